package ingestion

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/richarq/admetrics/internal/domain"
	"github.com/richarq/admetrics/internal/repository"
)

// Handler exposes the ingestion orchestrator over HTTP. The surface is
// deliberately thin: the pipeline does the work, these endpoints only
// translate requests and serialize summaries.
//
//	POST /ingest?tenant=slug             ingest every file in the intake dir
//	POST /ingest/{platform}?tenant=slug  ingest one platform's file
//	GET  /stats?tenant=slug              campaign/metric counts
//	GET  /logs?tenant=slug&file=name     recent ingestion errors
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with HTTP endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register attaches the handler's routes to a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest", h.ingestAll)
	mux.HandleFunc("POST /ingest/{platform}", h.ingestPlatform)
	mux.HandleFunc("GET /stats", h.stats)
	mux.HandleFunc("GET /logs", h.logs)
}

func (h *Handler) ingestAll(w http.ResponseWriter, r *http.Request) {
	tenant := tenantSlug(r)
	if tenant == "" {
		http.Error(w, "tenant is required", http.StatusBadRequest)
		return
	}

	results, err := h.service.IngestAll(r.Context(), tenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) ingestPlatform(w http.ResponseWriter, r *http.Request) {
	tenant := tenantSlug(r)
	if tenant == "" {
		http.Error(w, "tenant is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.IngestPlatform(r.Context(), r.PathValue("platform"), tenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	tenant := tenantSlug(r)
	if tenant == "" {
		http.Error(w, "tenant is required", http.StatusBadRequest)
		return
	}

	stats, err := h.service.Stats(r.Context(), tenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	tenant := tenantSlug(r)
	if tenant == "" {
		http.Error(w, "tenant is required", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	entries, err := h.service.Logs(r.Context(), tenant, query.Get("file"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.IngestionLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func tenantSlug(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("tenant"))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, repository.ErrNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
