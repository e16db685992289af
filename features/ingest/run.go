package ingest

import "time"

// Run is one recorded ingestion run.
type Run struct {
	ID          string    `json:"id"`
	Directory   string    `json:"directory"`
	Status      string    `json:"status"`
	TotalFiles  int       `json:"total_files"`
	TotalChunks int       `json:"total_chunks"`
	FailedFiles []string  `json:"failed_files"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
