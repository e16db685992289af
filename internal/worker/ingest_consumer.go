package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nsqio/go-nsq"

	"bookchat/internal/config"
	"bookchat/internal/ingest"
	"bookchat/internal/middleware"
)

// IngestConsumer runs the ingestion pipeline for ingest.task messages
// and publishes the run report to ingest.result.
type IngestConsumer struct {
	pipeline  Pipeline
	publisher Publisher
}

func NewIngestConsumer(pipeline Pipeline, publisher Publisher) *IngestConsumer {
	return &IngestConsumer{pipeline: pipeline, publisher: publisher}
}

func (c *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid ingest task", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	report, runErr := c.pipeline.ProcessAll(ctx, payload.Directory)

	result := IngestResultPayload{
		RunID:         payload.RunID,
		Status:        RunStatusCompleted,
		CorrelationID: payload.CorrelationID,
	}
	if report != nil {
		result.TotalFiles = report.TotalFiles
		result.TotalChunks = report.TotalChunks
		result.Failed = report.Failed
	}
	if runErr != nil {
		result.Status = RunStatusFailed
		result.Error = runErr.Error()

		// Re-running a run whose directory is missing or empty will not
		// help; record the failure and move on. Store-level errors are
		// reported the same way: re-ingestion is an operator decision
		// because inserts are append-only.
		if !errors.Is(runErr, ingest.ErrDirectoryNotFound) && !errors.Is(runErr, ingest.ErrNoDocuments) {
			slog.ErrorContext(ctx, "ingestion run aborted", "run_id", payload.RunID, "error", runErr)
		}
	}

	body, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal run result", "run_id", payload.RunID, "error", err)
		return nil
	}

	if err := c.publisher.Publish(config.TopicIngestResult, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish run result", "run_id", payload.RunID, "error", err)
		// Requeue re-runs the pipeline; the store is append-only and
		// at-least-once duplication is accepted.
		return err
	}

	slog.InfoContext(ctx, "ingestion task handled",
		"run_id", payload.RunID, "status", result.Status, "chunks", result.TotalChunks)
	return nil
}
