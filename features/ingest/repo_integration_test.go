package ingest_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/features/ingest"
	"bookchat/internal/testutils"
	"bookchat/internal/worker"
)

func TestIngestRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := ingest.NewPostgresRepo(s.DB)
	ctx := context.Background()

	run := &ingest.Run{
		ID:        uuid.New().String(),
		Directory: "books",
		Status:    worker.RunStatusPending,
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.False(t, run.CreatedAt.IsZero())

	err := repo.UpdateResult(ctx, run.ID, worker.RunStatusCompleted, 12, 230,
		[]string{"broken.pdf"}, "")
	require.NoError(t, err)

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, worker.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 12, runs[0].TotalFiles)
	assert.Equal(t, 230, runs[0].TotalChunks)
	assert.Equal(t, []string{"broken.pdf"}, runs[0].FailedFiles)
}
