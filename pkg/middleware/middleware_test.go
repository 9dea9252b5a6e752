package middleware_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/entropyworks/loghose/pkg/middleware"
)

var _ = Describe("Middleware", func() {
	Describe("RestrictHandler", func() {
		var handler http.Handler

		BeforeEach(func() {
			handler = middleware.RestrictHandler("sesame")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
		})

		It("should pass requests carrying the shared secret", func() {
			request := httptest.NewRequest(http.MethodPost, "/ingest", nil)
			request.Header.Set("x-secret", "sesame")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})

		It("should reject requests with the wrong secret", func() {
			request := httptest.NewRequest(http.MethodPost, "/ingest", nil)
			request.Header.Set("x-secret", "guess")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			Expect(recorder.Body.String()).To(ContainSubstring("not authorized"))
		})

		It("should reject requests without the header", func() {
			request := httptest.NewRequest(http.MethodPost, "/ingest", nil)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should honour a custom header name", func() {
			custom := middleware.RestrictHandlerWithHeaderName("sesame", "x-api-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			request := httptest.NewRequest(http.MethodGet, "/tenants/a.example/objects", nil)
			request.Header.Set("x-api-key", "sesame")
			recorder := httptest.NewRecorder()

			custom.ServeHTTP(recorder, request)
			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})
	})

	Describe("MaskSecret", func() {
		It("should keep only the first three characters", func() {
			Expect(middleware.MaskSecret("change")).To(Equal("cha***"))
		})

		It("should accept secrets shorter than three characters", func() {
			Expect(middleware.MaskSecret("ab")).To(Equal("ab***"))
			Expect(middleware.MaskSecret("")).To(Equal("***"))
		})
	})
})
