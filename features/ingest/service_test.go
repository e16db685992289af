package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/internal/config"
	"bookchat/internal/worker"
)

type fakeRepo struct {
	created []Run
	updated []string
	runs    []Run
	err     error
}

func (f *fakeRepo) Create(ctx context.Context, run *Run) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRepo) UpdateResult(ctx context.Context, id, status string, totalFiles, totalChunks int, failedFiles []string, errMsg string) error {
	f.updated = append(f.updated, id+":"+status)
	return f.err
}

func (f *fakeRepo) List(ctx context.Context) ([]Run, error) {
	return f.runs, f.err
}

type fakePublisher struct {
	err    error
	topics []string
	bodies [][]byte
}

func (f *fakePublisher) Publish(topic string, body []byte) error {
	f.topics = append(f.topics, topic)
	f.bodies = append(f.bodies, body)
	return f.err
}

func TestTrigger(t *testing.T) {
	t.Run("Records a pending run and publishes the task", func(t *testing.T) {
		repo := &fakeRepo{}
		publisher := &fakePublisher{}
		svc := NewService(repo, publisher)

		run, err := svc.Trigger(context.Background(), "books")
		require.NoError(t, err)

		assert.NotEmpty(t, run.ID)
		assert.Equal(t, worker.RunStatusPending, run.Status)
		require.Len(t, repo.created, 1)
		require.Equal(t, []string{config.TopicIngestTask}, publisher.topics)

		var payload worker.IngestTaskPayload
		require.NoError(t, json.Unmarshal(publisher.bodies[0], &payload))
		assert.Equal(t, run.ID, payload.RunID)
		assert.Equal(t, "books", payload.Directory)
	})

	t.Run("Create failure publishes nothing", func(t *testing.T) {
		publisher := &fakePublisher{}
		svc := NewService(&fakeRepo{err: errors.New("db down")}, publisher)

		_, err := svc.Trigger(context.Background(), "books")
		assert.Error(t, err)
		assert.Empty(t, publisher.topics)
	})

	t.Run("Publish failure surfaces", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, &fakePublisher{err: errors.New("nsqd down")})

		_, err := svc.Trigger(context.Background(), "books")
		assert.Error(t, err)
	})
}

func TestRecordResult(t *testing.T) {
	t.Run("Flattens failures into filenames", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, &fakePublisher{})

		err := svc.RecordResult(context.Background(), worker.IngestResultPayload{
			RunID:       "run-1",
			Status:      worker.RunStatusCompleted,
			TotalFiles:  3,
			TotalChunks: 40,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"run-1:completed"}, repo.updated)
	})
}
