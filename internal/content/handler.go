package content

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ironbridge-it/website-api/internal/observability/metrics"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

const defaultQueryTimeout = 5 * time.Second

// Handler serves the catalogue endpoints.
type Handler struct {
	repo         Repository
	metrics      *metrics.ContentMetrics
	logger       *logging.Logger
	queryTimeout time.Duration
}

// NewHandler creates a content handler. m may be nil.
func NewHandler(repo Repository, m *metrics.ContentMetrics, logger *logging.Logger, queryTimeout time.Duration) *Handler {
	if repo == nil {
		panic("content: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Handler{
		repo:         repo,
		metrics:      m,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListCaseStudies handles GET /api/case-studies
func (h *Handler) ListCaseStudies(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, "case_studies", "Failed to fetch case studies", h.repo.ListCaseStudies)
}

// ListSolutions handles GET /api/solutions
func (h *Handler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, "solutions", "Failed to fetch solutions", h.repo.ListSolutions)
}

func serveList[T any](h *Handler, w http.ResponseWriter, r *http.Request, collection, failure string, list func(context.Context) ([]T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	items, err := list(ctx)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		h.metrics.ObserveFetch(collection, "error", elapsed)
		h.logger.Error("failed to list content", "collection", collection, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: failure})
		return
	}
	h.metrics.ObserveFetch(collection, "ok", elapsed)

	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
