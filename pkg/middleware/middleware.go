package middleware

import (
	"fmt"
	"net/http"

	"github.com/entropyworks/loghose/pkg/utils"
)

func RestrictHandlerWithHeaderName(secret string, name string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			xSecret := r.Header.Get(name)
			if xSecret != secret {
				utils.RespondWithError(w, http.StatusUnauthorized, "You are not authorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RestrictHandler(secret string) func(next http.Handler) http.Handler {
	return RestrictHandlerWithHeaderName(secret, "x-secret")
}

// MaskSecret shortens a shared secret for log output, keeping at most the
// first three characters.
func MaskSecret(secret string) string {
	return fmt.Sprintf("%.3s***", secret)
}
