package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/internal/text"
)

type fakeExtractor struct {
	mu      sync.Mutex
	pages   map[string][]text.Document // keyed by base name
	failing map[string]error
	calls   []string
}

func (f *fakeExtractor) Extract(path string) ([]text.Document, error) {
	name := filepath.Base(path)
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err, ok := f.failing[name]; ok {
		return nil, err
	}
	if docs, ok := f.pages[name]; ok {
		return docs, nil
	}
	return []text.Document{{Content: "content of " + name, Filename: name, Page: 1}}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	inserts [][]text.Chunk
	failOn  int // 1-based insert call that errors; 0 means never
}

func (f *fakeStore) InsertBatch(ctx context.Context, chunks []text.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, chunks)
	if f.failOn > 0 && len(f.inserts) == f.failOn {
		return errors.New("store unavailable")
	}
	return nil
}

func writePDFs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0o644))
	}
	return dir
}

func TestProcessAll(t *testing.T) {
	t.Run("Directory missing", func(t *testing.T) {
		p := NewPipeline(&fakeExtractor{}, &fakeStore{}, text.NewSplitter(100, 10), 10, 2)
		report, err := p.ProcessAll(context.Background(), filepath.Join(t.TempDir(), "absent"))
		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrDirectoryNotFound)
	})

	t.Run("Directory empty of PDFs", func(t *testing.T) {
		dir := writePDFs(t, "notes.txt")
		p := NewPipeline(&fakeExtractor{}, &fakeStore{}, text.NewSplitter(100, 10), 10, 2)
		_, err := p.ProcessAll(context.Background(), dir)
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("Non-PDF files are ignored, extension match is case-insensitive", func(t *testing.T) {
		dir := writePDFs(t, "a.pdf", "B.PDF", "skip.txt", "also.md")
		extractor := &fakeExtractor{}
		store := &fakeStore{}
		p := NewPipeline(extractor, store, text.NewSplitter(100, 10), 10, 2)

		report, err := p.ProcessAll(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, 2, report.TotalFiles)
		assert.ElementsMatch(t, []string{"a.pdf", "B.PDF"}, extractor.calls)
	})

	t.Run("One insert per batch", func(t *testing.T) {
		names := make([]string, 12)
		for i := range names {
			names[i] = fmt.Sprintf("book%02d.pdf", i)
		}
		dir := writePDFs(t, names...)

		store := &fakeStore{}
		p := NewPipeline(&fakeExtractor{}, store, text.NewSplitter(100, 10), 5, 3)

		report, err := p.ProcessAll(context.Background(), dir)
		require.NoError(t, err)

		// 12 files in batches of 5 -> 3 inserts.
		assert.Len(t, store.inserts, 3)
		assert.Len(t, report.Batches, 3)
		assert.Equal(t, 12, report.TotalFiles)
		assert.Equal(t, 12, report.TotalChunks)
		assert.Empty(t, report.Failed)
	})

	t.Run("Corrupt file is skipped, the rest of the run survives", func(t *testing.T) {
		names := make([]string, 12)
		for i := range names {
			names[i] = fmt.Sprintf("book%02d.pdf", i)
		}
		dir := writePDFs(t, names...)

		extractor := &fakeExtractor{failing: map[string]error{
			"book03.pdf": errors.New("malformed pdf"),
		}}
		store := &fakeStore{}
		p := NewPipeline(extractor, store, text.NewSplitter(100, 10), 10, 4)

		report, err := p.ProcessAll(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, 12, report.TotalFiles)
		assert.Equal(t, 11, report.TotalChunks)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, "book03.pdf", report.Failed[0].Filename)
		assert.Contains(t, report.Failed[0].Reason, "malformed")
	})

	t.Run("Whitespace-only chunks never reach the store", func(t *testing.T) {
		dir := writePDFs(t, "blank.pdf", "real.pdf")
		extractor := &fakeExtractor{pages: map[string][]text.Document{
			"blank.pdf": {{Content: "   \n\n\t ", Filename: "blank.pdf", Page: 1}},
		}}
		store := &fakeStore{}
		p := NewPipeline(extractor, store, text.NewSplitter(100, 10), 10, 2)

		report, err := p.ProcessAll(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalChunks)
		for _, batch := range store.inserts {
			for _, c := range batch {
				assert.NotEmpty(t, strings.TrimSpace(c.Content))
			}
		}
	})

	t.Run("Store failure aborts the run but keeps the report", func(t *testing.T) {
		names := make([]string, 12)
		for i := range names {
			names[i] = fmt.Sprintf("book%02d.pdf", i)
		}
		dir := writePDFs(t, names...)

		store := &fakeStore{failOn: 2}
		p := NewPipeline(&fakeExtractor{}, store, text.NewSplitter(100, 10), 5, 2)

		report, err := p.ProcessAll(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 2")
		require.NotNil(t, report)
		// Only the first batch made it in.
		assert.Equal(t, 5, report.TotalChunks)
		assert.Len(t, store.inserts, 2)
	})

	t.Run("Chunk IDs are per file", func(t *testing.T) {
		dir := writePDFs(t, "guide.pdf")
		extractor := &fakeExtractor{pages: map[string][]text.Document{
			"guide.pdf": {
				{Content: strings.Repeat("alpha beta gamma delta. ", 20), Filename: "guide.pdf", Page: 1},
			},
		}}
		store := &fakeStore{}
		p := NewPipeline(extractor, store, text.NewSplitter(100, 10), 10, 1)

		_, err := p.ProcessAll(context.Background(), dir)
		require.NoError(t, err)

		require.Len(t, store.inserts, 1)
		chunks := store.inserts[0]
		require.Greater(t, len(chunks), 1)
		assert.Equal(t, "guide.pdf_chunk_0", chunks[0].ID)
		assert.Equal(t, fmt.Sprintf("guide.pdf_chunk_%d", len(chunks)-1), chunks[len(chunks)-1].ID)
	})
}
