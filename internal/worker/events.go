package worker

import "bookchat/internal/ingest"

// IngestTaskPayload asks a worker to run the pipeline over a directory.
type IngestTaskPayload struct {
	RunID         string `json:"run_id"`
	Directory     string `json:"directory"`
	CorrelationID string `json:"correlation_id"`
}

// IngestResultPayload carries a finished run's report back to the API
// side, which records it in Postgres.
type IngestResultPayload struct {
	RunID         string               `json:"run_id"`
	Status        string               `json:"status"`
	TotalFiles    int                  `json:"total_files"`
	TotalChunks   int                  `json:"total_chunks"`
	Failed        []ingest.FileFailure `json:"failed,omitempty"`
	Error         string               `json:"error,omitempty"`
	CorrelationID string               `json:"correlation_id"`
}

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
