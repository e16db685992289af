package text

import (
	"fmt"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Document is one page of extracted text with its provenance.
type Document struct {
	Content  string
	Filename string
	Page     int
}

// Chunk is a bounded slice of a Document, the unit that gets embedded
// and stored.
type Chunk struct {
	Content  string
	Filename string
	Page     int
	Index    int
	ID       string
}

// Splitter cuts text into windows of at most chunkSize characters,
// preferring coarse separators (paragraph, line, word) before falling
// back to a character-level hard split. Consecutive windows share up to
// chunkOverlap trailing/leading characters.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 10
		}
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// SplitDocuments chunks each page and tags every chunk with the page's
// filename and number. The chunk index counts emission order across the
// whole call, so chunk IDs are stable for a given input.
func (s *Splitter) SplitDocuments(docs []Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		for _, piece := range s.Split(doc.Content) {
			idx := len(chunks)
			chunks = append(chunks, Chunk{
				Content:  piece,
				Filename: doc.Filename,
				Page:     doc.Page,
				Index:    idx,
				ID:       fmt.Sprintf("%s_chunk_%d", doc.Filename, idx),
			})
		}
	}
	return chunks
}

// Split cuts a single text into chunks. Deterministic: the same input
// always yields the same output.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the coarsest separator that actually occurs in the text.
	// The empty separator always matches and means character-level split.
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	var final []string
	var good []string
	for _, piece := range splitKeepSeparator(text, sep) {
		if len(piece) <= s.chunkSize {
			good = append(good, piece)
			continue
		}
		// Oversized piece: flush what we have, then recurse with finer
		// separators.
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		final = append(final, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge accumulates pieces into windows of at most chunkSize characters.
// When a window is flushed, trailing pieces totalling up to chunkOverlap
// characters are carried into the next window.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var window []string
	total := 0

	for _, p := range pieces {
		if total+len(p) > s.chunkSize && len(window) > 0 {
			out = append(out, strings.Join(window, ""))
			for total > s.chunkOverlap || (total+len(p) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += len(p)
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, ""))
	}
	return out
}

// hardSplit is the last-resort character-level split for a run of text
// with no usable separator, e.g. one enormous token. Data is never
// dropped: every character lands in some chunk.
func (s *Splitter) hardSplit(text string) []string {
	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = s.chunkSize
	}
	var out []string
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		out = append(out, text[start:end])
	}
	return out
}

// splitKeepSeparator splits text on sep, prepending the separator to the
// following piece so that concatenating all pieces reconstructs the
// original text exactly.
func splitKeepSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			if p != "" {
				pieces = append(pieces, p)
			}
			continue
		}
		pieces = append(pieces, sep+p)
	}
	return pieces
}

// FilterEmpty drops chunks whose content is empty or whitespace-only.
// Order is preserved and the operation is idempotent.
func FilterEmpty(chunks []Chunk) []Chunk {
	filtered := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
