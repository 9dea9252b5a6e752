package ingestion

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/entropyworks/loghose/pkg/utils"
)

// Headers the ingest endpoint accepts as delivery metadata. They mirror the
// broker metadata keys so batches replayed over HTTP keep the object keys
// they would have had coming off the broker.
const (
	HeaderPartitionID    = "x-partition-id"
	HeaderOffset         = "x-offset"
	HeaderSequenceNumber = "x-sequence-number"
)

// ObjectLister lists stored object keys in a tenant's container.
type ObjectLister interface {
	ListObjects(ctx context.Context, container string, prefix string) ([]string, error)
}

type HTTPTenantObjectsResponse struct {
	Tenant    string   `json:"tenant"`
	Container string   `json:"container"`
	Objects   []string `json:"objects"`
}

type service struct {
	logContext logrus.FieldLogger
	pipeline   *Pipeline
	resolver   *TenantResolver
	lister     ObjectLister
}

func NewService(logContext logrus.FieldLogger, pipeline *Pipeline, resolver *TenantResolver, lister ObjectLister) *service {
	return &service{
		logContext: logContext,
		pipeline:   pipeline,
		resolver:   resolver,
		lister:     lister,
	}
}

// Ingest accepts one raw batch over HTTP, with the body carrying the
// payload exactly as a broker would deliver it.
func (s *service) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logContext.WithFields(logrus.Fields{
			"error":   err,
			"context": "reading payload",
		}).Error("ingest")
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read payload")
		return
	}
	defer r.Body.Close()

	metadata := map[string]interface{}{}
	if value := r.Header.Get(HeaderPartitionID); value != "" {
		metadata["PartitionId"] = value
	}
	if value := r.Header.Get(HeaderOffset); value != "" {
		metadata["offset"] = value
	}
	if value := r.Header.Get(HeaderSequenceNumber); value != "" {
		metadata["sequence_number"] = value
	}

	summary, err := s.pipeline.Process(r.Context(), Batch{
		Body:     body,
		Metadata: metadata,
	})
	if err != nil {
		s.logContext.WithFields(logrus.Fields{
			"error":   err,
			"context": "writing groups",
		}).Error("ingest")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to write one or more groups")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// GetTenantObjects lists the objects stored for one tenant, resolving the
// container name the same way ingestion does. The query parameters "prefix"
// and "limit" narrow the listing.
func (s *service) GetTenantObjects(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fqdn := vars["fqdn"]

	prefix := r.URL.Query().Get("prefix")

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	container := s.resolver.ContainerFor(fqdn)
	objects, err := s.lister.ListObjects(r.Context(), container, prefix)
	if err != nil {
		s.logContext.WithFields(logrus.Fields{
			"error":     err,
			"container": container,
			"context":   "listing objects",
		}).Error("tenant objects")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list objects")
		return
	}

	if objects == nil {
		objects = make([]string, 0)
	}
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}

	utils.RespondWithJSON(w, http.StatusOK, HTTPTenantObjectsResponse{
		Tenant:    fqdn,
		Container: container,
		Objects:   objects,
	})
}

func (s *service) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.RespondNoContent(w, http.StatusOK)
}
