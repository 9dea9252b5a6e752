package ingestion_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"

	"github.com/entropyworks/loghose/pkg/ingestion"
)

var _ = Describe("TenantOverrides", func() {
	var (
		logger *logrus.Logger
		dir    string
		path   string
	)

	BeforeEach(func() {
		logger, _ = logrusTest.NewNullLogger()

		var err error
		dir, err = os.MkdirTemp("", "overrides")
		Expect(err).To(BeNil())
		path = filepath.Join(dir, "overrides.json")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeOverrides := func(content string) {
		Expect(os.WriteFile(path, []byte(content), 0644)).To(BeNil())
	}

	It("should load entries and look them up case-insensitively", func() {
		writeOverrides(`{"overrides": [{"fqdn": "Example.COM ", "container": "custom-logs"}]}`)

		overrides, err := ingestion.NewTenantOverrides(logger, path)
		Expect(err).To(BeNil())

		container, ok := overrides.Lookup("example.com")
		Expect(ok).To(BeTrue())
		Expect(container).To(Equal("custom-logs"))

		container, ok = overrides.Lookup("  EXAMPLE.com ")
		Expect(ok).To(BeTrue())
		Expect(container).To(Equal("custom-logs"))
	})

	It("should ignore entries missing a tenant or a container", func() {
		writeOverrides(`{"overrides": [{"fqdn": "", "container": "x"}, {"fqdn": "a.example", "container": " "}]}`)

		overrides, err := ingestion.NewTenantOverrides(logger, path)
		Expect(err).To(BeNil())

		_, ok := overrides.Lookup("a.example")
		Expect(ok).To(BeFalse())
	})

	It("should fail when the file does not exist", func() {
		_, err := ingestion.NewTenantOverrides(logger, filepath.Join(dir, "missing.json"))
		Expect(err).ToNot(BeNil())
	})

	It("should fail when the file does not parse", func() {
		writeOverrides(`{"overrides": [`)

		_, err := ingestion.NewTenantOverrides(logger, path)
		Expect(err).ToNot(BeNil())
	})

	It("should pick up rewrites of the file", func() {
		writeOverrides(`{"overrides": [{"fqdn": "a.example", "container": "first"}]}`)

		overrides, err := ingestion.NewTenantOverrides(logger, path)
		Expect(err).To(BeNil())

		// Give the watcher a moment to register before changing the file.
		time.Sleep(100 * time.Millisecond)
		writeOverrides(`{"overrides": [{"fqdn": "a.example", "container": "second"}]}`)

		Eventually(func() string {
			container, _ := overrides.Lookup("a.example")
			return container
		}, "2s", "50ms").Should(Equal("second"))
	})

	It("should keep the previous entries when a rewrite does not parse", func() {
		writeOverrides(`{"overrides": [{"fqdn": "a.example", "container": "kept"}]}`)

		overrides, err := ingestion.NewTenantOverrides(logger, path)
		Expect(err).To(BeNil())

		time.Sleep(100 * time.Millisecond)
		writeOverrides(`not json`)

		Consistently(func() string {
			container, _ := overrides.Lookup("a.example")
			return container
		}, "300ms", "50ms").Should(Equal("kept"))
	})

	Describe("with a TenantResolver", func() {
		It("should win over derivation and still be normalized", func() {
			writeOverrides(`{"overrides": [{"fqdn": "special.example", "container": "Custom_Logs!"}]}`)

			overrides, err := ingestion.NewTenantOverrides(logger, path)
			Expect(err).To(BeNil())

			resolver := ingestion.NewTenantResolver("logs-", overrides)
			Expect(resolver.ContainerFor("special.example")).To(Equal("custom-logs"))
			Expect(resolver.ContainerFor("other.example")).To(Equal("logs-other-example"))
		})

		It("should fall back when an override collapses below the minimum length", func() {
			writeOverrides(`{"overrides": [{"fqdn": "short.example", "container": "!!"}]}`)

			overrides, err := ingestion.NewTenantOverrides(logger, path)
			Expect(err).To(BeNil())

			resolver := ingestion.NewTenantResolver("logs-", overrides)
			Expect(resolver.ContainerFor("short.example")).To(Equal(ingestion.DefaultContainerName))
		})
	})
})
