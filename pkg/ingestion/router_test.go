package ingestion_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/entropyworks/loghose/pkg/ingestion"
)

var _ = Describe("Router", func() {
	var (
		resolver *ingestion.TenantResolver
		now      time.Time
	)

	BeforeEach(func() {
		resolver = ingestion.NewTenantResolver("logs-", nil)
		now = time.Date(2026, 1, 15, 9, 22, 31, 500000000, time.UTC)
	})

	Describe("ParseTimePolicy", func() {
		It("should default to processing time", func() {
			policy, err := ingestion.ParseTimePolicy("")
			Expect(err).To(BeNil())
			Expect(policy).To(Equal(ingestion.TimePolicyProcessing))
		})

		It("should accept event regardless of casing", func() {
			policy, err := ingestion.ParseTimePolicy(" Event ")
			Expect(err).To(BeNil())
			Expect(policy).To(Equal(ingestion.TimePolicyEvent))
		})

		It("should reject unknown values", func() {
			_, err := ingestion.ParseTimePolicy("wallclock")
			Expect(err).ToNot(BeNil())
		})
	})

	When("routing with processing time", func() {
		It("should group by tenant in first-seen order", func() {
			records := []ingestion.Record{
				{"message": "Host: a.example one"},
				{"message": "Host: b.example two"},
				{"message": "Host: a.example three"},
			}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, ingestion.Delivery{}, now)

			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Tenant).To(Equal("a.example"))
			Expect(groups[0].Container).To(Equal("logs-a-example"))
			Expect(groups[1].Tenant).To(Equal("b.example"))
			Expect(groups[1].Container).To(Equal("logs-b-example"))

			Expect(groups[0].Records).To(HaveLen(2))
			Expect(groups[0].Records[0].Message).To(Equal("Host: a.example one"))
			Expect(groups[0].Records[1].Message).To(Equal("Host: a.example three"))
		})

		It("should stamp every record with the invocation hour", func() {
			records := []ingestion.Record{
				{"message": "Host: a.example", "time": "2020-05-05T05:05:05Z"},
			}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, ingestion.Delivery{}, now)

			Expect(groups).To(HaveLen(1))
			Expect(groups[0].Bucket).To(Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
			Expect(groups[0].Records[0].TimeUTC).To(Equal("2026-01-15T09:22:31.5Z"))
		})

		It("should route hostless records to the unknown tenant", func() {
			records := []ingestion.Record{
				{"message": "no host in sight"},
			}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, ingestion.Delivery{}, now)

			Expect(groups).To(HaveLen(1))
			Expect(groups[0].Tenant).To(Equal(ingestion.UnknownTenant))
			Expect(groups[0].Container).To(Equal("logs-unknown"))
		})
	})

	When("routing with event time", func() {
		It("should split the same tenant across hour buckets", func() {
			records := []ingestion.Record{
				{"message": "Host: a.example", "time": "2026-01-15T09:10:00Z"},
				{"message": "Host: a.example", "time": "2026-01-15T10:10:00Z"},
			}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyEvent, false).
				Route(records, ingestion.Delivery{}, now)

			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Bucket).To(Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
			Expect(groups[1].Bucket).To(Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)))
		})

		It("should fall back to the invocation time when the record has none", func() {
			records := []ingestion.Record{
				{"message": "Host: a.example"},
			}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyEvent, false).
				Route(records, ingestion.Delivery{}, now)

			Expect(groups[0].Bucket).To(Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
		})
	})

	Describe("envelopes", func() {
		It("should carry the delivery description", func() {
			delivery := ingestion.Delivery{PartitionID: "3", Offset: "4886", SequenceNumber: "120"}
			records := []ingestion.Record{{"message": "Host: a.example"}}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, delivery, now)

			envelope := groups[0].Records[0]
			Expect(envelope.FQDN).To(Equal("a.example"))
			Expect(*envelope.PartitionID).To(Equal("3"))
			Expect(*envelope.Offset).To(Equal("4886"))
			Expect(*envelope.SequenceNumber).To(Equal("120"))
		})

		It("should leave absent delivery fields nil", func() {
			records := []ingestion.Record{{"message": "Host: a.example"}}

			groups := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, ingestion.Delivery{}, now)

			envelope := groups[0].Records[0]
			Expect(envelope.PartitionID).To(BeNil())
			Expect(envelope.Offset).To(BeNil())
			Expect(envelope.SequenceNumber).To(BeNil())
		})

		It("should include the original record only when asked to", func() {
			records := []ingestion.Record{{"message": "Host: a.example", "level": "info"}}

			without := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false).
				Route(records, ingestion.Delivery{}, now)
			with := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, true).
				Route(records, ingestion.Delivery{}, now)

			Expect(without[0].Records[0].Record).To(BeNil())
			Expect(with[0].Records[0].Record).To(Equal(records[0]))
		})
	})
})
