package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bookchat/internal/text"
)

// Record is a stored chunk: its text, embedding vector, and provenance.
type Record struct {
	Content    string
	Vector     []float32
	Filename   string
	Page       int
	ChunkID    string
	ChunkIndex int
}

// Match is one similarity-search hit.
type Match struct {
	Content  string
	Filename string
	Page     int
	Distance float32
}

// ServiceError marks an embedding-backend failure. It fails the whole
// insert or search call; retrying is the caller's decision.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embedding service: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

type Embedder interface {
	Embed(ctx context.Context, content string) ([]float32, error)
}

type Backend interface {
	StoreRecord(ctx context.Context, rec Record) error
	Search(ctx context.Context, vector []float32, limit int) ([]Match, error)
}

// Store pairs the embedding service with the persisted vector backend.
// Batch inserts are serialized through a single-writer lock; searches
// read concurrently and may or may not see an insert still in flight.
type Store struct {
	embedder Embedder
	backend  Backend

	writeMu sync.Mutex
}

func NewStore(embedder Embedder, backend Backend) *Store {
	return &Store{embedder: embedder, backend: backend}
}

// InsertBatch embeds every chunk and persists the records. Append-only:
// re-ingesting a file adds new records rather than updating old ones.
func (s *Store) InsertBatch(ctx context.Context, chunks []text.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]Record, 0, len(chunks))
	for _, c := range chunks {
		vector, err := s.embedder.Embed(ctx, c.Content)
		if err != nil {
			return &ServiceError{Op: "embed chunk " + c.ID, Err: err}
		}
		records = append(records, Record{
			Content:    c.Content,
			Vector:     vector,
			Filename:   c.Filename,
			Page:       c.Page,
			ChunkID:    c.ID,
			ChunkIndex: c.Index,
		})
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, rec := range records {
		if err := s.backend.StoreRecord(ctx, rec); err != nil {
			return &ServiceError{Op: "store chunk " + rec.ChunkID, Err: err}
		}
	}

	slog.InfoContext(ctx, "batch stored", "records", len(records))
	return nil
}

// Search embeds the query with the same model used for indexing and
// returns the k nearest records.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Match, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &ServiceError{Op: "embed query", Err: err}
	}

	matches, err := s.backend.Search(ctx, vector, k)
	if err != nil {
		return nil, &ServiceError{Op: "search", Err: err}
	}
	return matches, nil
}
