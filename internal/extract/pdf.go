package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"bookchat/internal/text"
)

// ExtractionError marks a per-file extraction failure. The ingestion
// pipeline treats it as recoverable: the file is skipped and recorded,
// the run continues.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PDFExtractor reads a PDF file into one Document per physical page,
// in page order, with 1-based page numbers and the file's base name as
// metadata.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(path string) (docs []text.Document, err error) {
	// The pdf package panics on some malformed inputs; fold that into the
	// per-file error so one bad PDF cannot kill an ingestion run.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = &ExtractionError{Path: path, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	filename := filepath.Base(path)
	totalPages := reader.NumPage()

	docs = make([]text.Document, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			slog.Warn("null page encountered", "file", filename, "page", pageNum)
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ExtractionError{
				Path: path,
				Err:  fmt.Errorf("page %d: %w", pageNum, err),
			}
		}

		docs = append(docs, text.Document{
			Content:  content,
			Filename: filename,
			Page:     pageNum,
		})
	}

	slog.Debug("extracted pdf", "file", filename, "pages", len(docs))
	return docs, nil
}
