package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/internal/text"
)

type fakeEmbedder struct {
	err    error
	failOn string // content that triggers err
	calls  []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, content string) ([]float32, error) {
	f.calls = append(f.calls, content)
	if f.err != nil && (f.failOn == "" || f.failOn == content) {
		return nil, f.err
	}
	return []float32{float32(len(content)), 0.5}, nil
}

type fakeBackend struct {
	records   []Record
	storeErr  error
	matches   []Match
	searchErr error
}

func (f *fakeBackend) StoreRecord(ctx context.Context, rec Record) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeBackend) Search(ctx context.Context, vector []float32, limit int) ([]Match, error) {
	return f.matches, f.searchErr
}

func TestInsertBatch(t *testing.T) {
	chunks := []text.Chunk{
		{Content: "alpha", Filename: "a.pdf", Page: 1, Index: 0, ID: "a.pdf_chunk_0"},
		{Content: "beta", Filename: "a.pdf", Page: 2, Index: 1, ID: "a.pdf_chunk_1"},
	}

	t.Run("Embeds and stores every chunk", func(t *testing.T) {
		backend := &fakeBackend{}
		store := NewStore(&fakeEmbedder{}, backend)

		require.NoError(t, store.InsertBatch(context.Background(), chunks))
		require.Len(t, backend.records, 2)

		rec := backend.records[0]
		assert.Equal(t, "alpha", rec.Content)
		assert.Equal(t, "a.pdf", rec.Filename)
		assert.Equal(t, "a.pdf_chunk_0", rec.ChunkID)
		assert.NotEmpty(t, rec.Vector)
	})

	t.Run("Empty batch is a no-op", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		store := NewStore(embedder, &fakeBackend{})

		require.NoError(t, store.InsertBatch(context.Background(), nil))
		assert.Empty(t, embedder.calls)
	})

	t.Run("Embedding failure aborts before anything is stored", func(t *testing.T) {
		backend := &fakeBackend{}
		store := NewStore(&fakeEmbedder{err: errors.New("quota"), failOn: "beta"}, backend)

		err := store.InsertBatch(context.Background(), chunks)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Contains(t, svcErr.Op, "a.pdf_chunk_1")
		assert.Empty(t, backend.records)
	})

	t.Run("Backend failure is wrapped with the chunk ID", func(t *testing.T) {
		backend := &fakeBackend{storeErr: errors.New("conn refused")}
		store := NewStore(&fakeEmbedder{}, backend)

		err := store.InsertBatch(context.Background(), chunks)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Contains(t, err.Error(), "a.pdf_chunk_0")
	})
}

func TestSearch(t *testing.T) {
	t.Run("Embeds the query and returns backend matches", func(t *testing.T) {
		backend := &fakeBackend{matches: []Match{{Content: "hit", Filename: "a.pdf", Page: 3}}}
		embedder := &fakeEmbedder{}
		store := NewStore(embedder, backend)

		matches, err := store.Search(context.Background(), "question", 4)
		require.NoError(t, err)
		assert.Equal(t, backend.matches, matches)
		assert.Equal(t, []string{"question"}, embedder.calls)
	})

	t.Run("Query embedding failure", func(t *testing.T) {
		store := NewStore(&fakeEmbedder{err: errors.New("quota")}, &fakeBackend{})

		_, err := store.Search(context.Background(), "question", 4)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "embed query", svcErr.Op)
	})

	t.Run("Backend search failure", func(t *testing.T) {
		store := NewStore(&fakeEmbedder{}, &fakeBackend{searchErr: errors.New("down")})

		_, err := store.Search(context.Background(), "question", 4)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "search", svcErr.Op)
	})
}
