package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type ChunkCounter interface {
	Count(ctx context.Context) (int, error)
}

type QuestionCounter interface {
	CountQuestions(ctx context.Context) (int, error)
}

type Handler struct {
	chunks    ChunkCounter
	questions QuestionCounter
}

func NewHandler(chunks ChunkCounter, questions QuestionCounter) *Handler {
	return &Handler{chunks: chunks, questions: questions}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chunkCount, err := h.chunks.Count(ctx)
	if err != nil {
		slog.Error("failed to count chunks", "error", err)
		chunkCount = -1
	}

	questionCount, err := h.questions.CountQuestions(ctx)
	if err != nil {
		slog.Error("failed to count questions", "error", err)
		questionCount = -1
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]int{
			"indexed_chunks":  chunkCount,
			"questions_asked": questionCount,
		},
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
