package ingestion_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	mocks "github.com/entropyworks/loghose/mocks/pkg/ingestion"
	"github.com/entropyworks/loghose/pkg/ingestion"
)

var _ = Describe("Pipeline", func() {
	var (
		logger   *logrus.Logger
		writer   *mocks.GroupWriter
		pipeline *ingestion.Pipeline
	)

	BeforeEach(func() {
		logger, _ = logrusTest.NewNullLogger()
		writer = new(mocks.GroupWriter)

		resolver := ingestion.NewTenantResolver("logs-", nil)
		router := ingestion.NewRouter(resolver, ingestion.TimePolicyProcessing, false)
		pipeline = ingestion.NewPipeline(logger, router, writer)
	})

	It("should normalize, route and write one batch", func() {
		batch := ingestion.Batch{
			Body: []byte(`{"records": [
				{"message": "Host: a.example one"},
				{"message": "Host: b.example two"},
				{"message": "Host: a.example three"}
			]}`),
			Metadata: map[string]interface{}{
				"PartitionId": "3",
				"offset":      "4886",
			},
		}

		var (
			routed   []*ingestion.Group
			delivery ingestion.Delivery
		)
		writer.On("WriteGroups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(ingestion.WriteReport{Written: 2}, nil).
			Run(func(args mock.Arguments) {
				routed = args.Get(1).([]*ingestion.Group)
				delivery = args.Get(2).(ingestion.Delivery)
			}).
			Times(1)

		summary, err := pipeline.Process(context.TODO(), batch)

		Expect(err).To(BeNil())
		Expect(summary.Invocation).ToNot(BeEmpty())
		Expect(summary.Records).To(Equal(3))
		Expect(summary.Groups).To(Equal(2))
		Expect(summary.Written).To(Equal(2))
		Expect(summary.Failed).To(Equal(0))

		Expect(routed).To(HaveLen(2))
		Expect(routed[0].Container).To(Equal("logs-a-example"))
		Expect(routed[1].Container).To(Equal("logs-b-example"))
		Expect(delivery.PartitionID).To(Equal("3"))
		Expect(delivery.Offset).To(Equal("4886"))

		mock.AssertExpectationsForObjects(GinkgoT(), writer)
	})

	It("should degrade malformed payloads instead of failing", func() {
		batch := ingestion.Batch{Body: []byte(`}{ not json`)}

		var routed []*ingestion.Group
		writer.On("WriteGroups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(ingestion.WriteReport{Written: 1}, nil).
			Run(func(args mock.Arguments) {
				routed = args.Get(1).([]*ingestion.Group)
			}).
			Times(1)

		summary, err := pipeline.Process(context.TODO(), batch)

		Expect(err).To(BeNil())
		Expect(summary.Records).To(Equal(1))
		Expect(routed).To(HaveLen(1))
		Expect(routed[0].Tenant).To(Equal(ingestion.UnknownTenant))
		Expect(routed[0].Records[0].Message).To(Equal(`}{ not json`))

		mock.AssertExpectationsForObjects(GinkgoT(), writer)
	})

	It("should pass write failures on to the caller", func() {
		batch := ingestion.Batch{Body: []byte(`{"records": [{"message": "Host: a.example"}]}`)}

		writer.On("WriteGroups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(ingestion.WriteReport{Written: 0, Failed: 1}, errors.New("upload failed")).
			Times(1)

		summary, err := pipeline.Process(context.TODO(), batch)

		Expect(err).ToNot(BeNil())
		Expect(summary.Written).To(Equal(0))
		Expect(summary.Failed).To(Equal(1))

		mock.AssertExpectationsForObjects(GinkgoT(), writer)
	})

	It("should write an empty group list for an empty batch", func() {
		batch := ingestion.Batch{Body: []byte(`{"records": []}`)}

		writer.On("WriteGroups", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(ingestion.WriteReport{}, nil).
			Times(1)

		summary, err := pipeline.Process(context.TODO(), batch)

		Expect(err).To(BeNil())
		Expect(summary.Records).To(Equal(0))
		Expect(summary.Groups).To(Equal(0))

		mock.AssertExpectationsForObjects(GinkgoT(), writer)
	})
})
