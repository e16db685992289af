package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"bookchat/internal/middleware"
)

type Handler struct {
	service    *Service
	defaultDir string
}

func NewHandler(service *Service, defaultDir string) *Handler {
	return &Handler{service: service, defaultDir: defaultDir}
}

func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Directory string `json:"directory"`
	}
	// The body is optional; an empty one means the configured PDF dir.
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Directory == "" {
		req.Directory = h.defaultDir
	}

	run, err := h.service.Trigger(r.Context(), req.Directory)
	if err != nil {
		slog.Error("failed to trigger ingestion", "error", err, "dir", req.Directory)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": run}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": runs,
		"meta": map[string]int{"count": len(runs)},
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
