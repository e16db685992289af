package retrieval

import (
	"context"
	"time"

	"bookchat/internal/index"
)

// DefaultTopK matches common retriever defaults.
const DefaultTopK = 4

// Result is one retrieved passage with its provenance.
type Result struct {
	Content  string  `json:"content"`
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
}

type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.Match, error)
}

// Service is a thin pass-through to the embedding store's similarity
// search. No ranking beyond what the store provides.
type Service struct {
	store  Searcher
	topK   int
	logger *QueryLogger
}

func NewService(store Searcher, topK int, logger *QueryLogger) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{store: store, topK: topK, logger: logger}
}

func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = s.topK
	}

	start := time.Now()
	matches, err := s.store.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Content:  m.Content,
			Filename: m.Filename,
			Page:     m.Page,
			Distance: m.Distance,
		})
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      query,
			NumResults: len(results),
			Duration:   time.Since(start),
		})
	}
	return results, nil
}
