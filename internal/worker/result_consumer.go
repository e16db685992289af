package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nsqio/go-nsq"

	"bookchat/internal/middleware"
)

// ResultConsumer records finished run reports in the run store.
type ResultConsumer struct {
	recorder RunRecorder
}

func NewResultConsumer(recorder RunRecorder) *ResultConsumer {
	return &ResultConsumer{recorder: recorder}
}

func (c *ResultConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestResultPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid ingest result", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	if err := c.recorder.RecordResult(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "failed to record run result", "run_id", payload.RunID, "error", err)
		return err // Retry
	}

	slog.InfoContext(ctx, "run result recorded", "run_id", payload.RunID, "status", payload.Status)
	return nil
}
