package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"bookchat/internal/text"
)

var (
	ErrDirectoryNotFound = errors.New("pdf directory not found")
	ErrNoDocuments       = errors.New("no pdf files found")
)

const (
	DefaultBatchSize   = 10
	DefaultConcurrency = 4
)

type Extractor interface {
	Extract(path string) ([]text.Document, error)
}

type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []text.Chunk) error
}

// FileFailure records one skipped file and why.
type FileFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchReport counts the chunks stored for one batch of files.
type BatchReport struct {
	Batch  int `json:"batch"`
	Chunks int `json:"chunks"`
}

// Report summarizes an ingestion run.
type Report struct {
	TotalFiles  int           `json:"total_files"`
	TotalChunks int           `json:"total_chunks"`
	Batches     []BatchReport `json:"batches"`
	Failed      []FileFailure `json:"failed"`
}

// Pipeline drives Extractor -> Splitter -> FilterEmpty -> ChunkStore over
// a directory of PDFs in fixed-size batches. A single file's failure is
// recorded and skipped; only directory-level and store-level errors abort
// the run.
type Pipeline struct {
	extractor   Extractor
	store       ChunkStore
	splitter    *text.Splitter
	batchSize   int
	concurrency int
}

func NewPipeline(extractor Extractor, store ChunkStore, splitter *text.Splitter, batchSize, concurrency int) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		extractor:   extractor,
		store:       store,
		splitter:    splitter,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// ProcessAll ingests every PDF under dir. It returns the run report even
// when a store-level error aborts the remaining batches, so callers can
// see how far the run got.
func (p *Pipeline) ProcessAll(ctx context.Context, dir string) (*Report, error) {
	paths, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{TotalFiles: len(paths)}
	slog.InfoContext(ctx, "ingestion run started", "dir", dir, "files", len(paths))

	for i := 0; i < len(paths); i += p.batchSize {
		end := i + p.batchSize
		if end > len(paths) {
			end = len(paths)
		}
		batchNum := i/p.batchSize + 1

		chunks, failed := p.processBatch(ctx, paths[i:end])
		report.Failed = append(report.Failed, failed...)

		if err := ctx.Err(); err != nil {
			return report, err
		}

		filtered := text.FilterEmpty(chunks)
		if len(filtered) == 0 {
			report.Batches = append(report.Batches, BatchReport{Batch: batchNum})
			continue
		}

		// One insert per batch bounds memory and write amplification.
		if err := p.store.InsertBatch(ctx, filtered); err != nil {
			slog.ErrorContext(ctx, "batch insert failed, aborting run",
				"batch", batchNum, "chunks_lost", len(filtered), "error", err)
			return report, fmt.Errorf("batch %d: %d chunks lost: %w", batchNum, len(filtered), err)
		}

		report.Batches = append(report.Batches, BatchReport{Batch: batchNum, Chunks: len(filtered)})
		report.TotalChunks += len(filtered)
		slog.InfoContext(ctx, "batch stored", "batch", batchNum, "chunks", len(filtered))
	}

	slog.InfoContext(ctx, "ingestion run finished",
		"files", report.TotalFiles, "chunks", report.TotalChunks, "failed", len(report.Failed))
	return report, nil
}

// processBatch extracts and chunks each file in the batch through a
// bounded worker pool. Results keep file order regardless of completion
// order.
func (p *Pipeline) processBatch(ctx context.Context, paths []string) ([]text.Chunk, []FileFailure) {
	type fileResult struct {
		chunks []text.Chunk
		err    error
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := p.extractor.Extract(path)
			if err != nil {
				results[i] = fileResult{err: err}
				return nil
			}
			results[i] = fileResult{chunks: p.splitter.SplitDocuments(docs)}
			return nil
		})
	}
	// Workers only propagate context cancellation, which is handled by the
	// caller; per-file errors stay in their result slot.
	_ = g.Wait()

	var chunks []text.Chunk
	var failed []FileFailure
	for i, res := range results {
		filename := filepath.Base(paths[i])
		if res.err != nil {
			slog.WarnContext(ctx, "file skipped", "file", filename, "error", res.err)
			failed = append(failed, FileFailure{Filename: filename, Reason: res.err.Error()})
			continue
		}
		chunks = append(chunks, res.chunks...)
	}
	return chunks, failed
}

func listPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}
	return paths, nil
}
