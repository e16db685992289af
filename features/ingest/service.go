package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"bookchat/internal/config"
	"bookchat/internal/middleware"
	"bookchat/internal/worker"
)

type Repository interface {
	Create(ctx context.Context, run *Run) error
	UpdateResult(ctx context.Context, id, status string, totalFiles, totalChunks int, failedFiles []string, errMsg string) error
	List(ctx context.Context) ([]Run, error)
}

type Publisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo      Repository
	publisher Publisher
}

func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Trigger records a pending run and hands it to the ingest worker via
// the task topic. The run itself happens asynchronously.
func (s *Service) Trigger(ctx context.Context, directory string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Directory: directory,
		Status:    worker.RunStatusPending,
	}
	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	payload := worker.IngestTaskPayload{
		RunID:         run.ID,
		Directory:     directory,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(config.TopicIngestTask, body); err != nil {
		return nil, fmt.Errorf("publish ingest task: %w", err)
	}

	return run, nil
}

func (s *Service) List(ctx context.Context) ([]Run, error) {
	return s.repo.List(ctx)
}

// RecordResult applies a worker's run report. Implements
// worker.RunRecorder.
func (s *Service) RecordResult(ctx context.Context, result worker.IngestResultPayload) error {
	failedFiles := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failedFiles = append(failedFiles, f.Filename)
	}
	return s.repo.UpdateResult(ctx, result.RunID, result.Status,
		result.TotalFiles, result.TotalChunks, failedFiles, result.Error)
}
