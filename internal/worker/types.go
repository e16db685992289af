package worker

import (
	"context"

	"bookchat/internal/ingest"
)

type Pipeline interface {
	ProcessAll(ctx context.Context, dir string) (*ingest.Report, error)
}

type Publisher interface {
	Publish(topic string, body []byte) error
}

type RunRecorder interface {
	RecordResult(ctx context.Context, result IngestResultPayload) error
}
