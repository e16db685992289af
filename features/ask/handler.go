package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"bookchat/features/auth"
	"bookchat/internal/chat"
	"bookchat/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question  string `json:"question"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	var userID int64
	if user := auth.CurrentUser(r.Context()); user != nil {
		userID = user.ID
	}

	answer, err := h.service.Ask(r.Context(), userID, req.SessionID, req.Question)
	if err != nil {
		var genErr *chat.GenerationError
		if errors.As(err, &genErr) {
			h.writeError(r.Context(), w, "GENERATION_ERROR", "Answer generation failed", http.StatusBadGateway)
			return
		}
		slog.Error("ask failed", "error", err, "session_id", req.SessionID)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []chat.Source{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"answer":     answer.Answer,
			"sources":    sources,
			"session_id": req.SessionID,
		},
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "session_id is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	entries, err := h.service.History(r.Context(), sessionID, limit)
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": entries,
		"meta": map[string]int{"count": len(entries)},
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
