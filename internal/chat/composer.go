package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookchat/internal/retrieval"
)

// GenerationError marks a failed or timed-out generation call. The query
// fails as a whole; no partial answer is surfaced and no automatic retry
// happens here.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Source identifies where a retrieved passage came from.
type Source struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}

// Answer is a generated reply plus the distinct sources it was
// grounded on.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, system string, history []Turn, question string) (string, error)
}

// Composer runs one question end to end: retrieve context, render the
// system instruction, call the generation service once, and record the
// turn in the session's memory.
type Composer struct {
	retriever Retriever
	generator Generator
	memory    *Memory
	prompt    *Prompt
	timeout   time.Duration
}

func NewComposer(retriever Retriever, generator Generator, memory *Memory, prompt *Prompt, timeout time.Duration) *Composer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Composer{
		retriever: retriever,
		generator: generator,
		memory:    memory,
		prompt:    prompt,
		timeout:   timeout,
	}
}

func (c *Composer) Ask(ctx context.Context, sessionID, question string) (*Answer, error) {
	results, err := c.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return nil, err
	}

	passages := make([]string, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Content)
	}

	system, err := c.prompt.Render(passages)
	if err != nil {
		return nil, err
	}

	history := c.memory.Recent(sessionID)

	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.generator.Generate(genCtx, system, history, question)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "session_id", sessionID, "error", err)
		return nil, &GenerationError{Err: err}
	}

	sources := collectSources(results)
	// An out-of-context reply is not grounded on anything; citing the
	// retrieved chunks would be misleading.
	if strings.TrimSpace(answer) == c.prompt.Fallback() {
		sources = nil
	}

	c.memory.Append(sessionID, Turn{Question: question, Answer: answer})

	return &Answer{Answer: answer, Sources: sources}, nil
}

// collectSources returns the distinct (filename, page) pairs in
// retrieval order.
func collectSources(results []retrieval.Result) []Source {
	seen := make(map[Source]bool)
	var sources []Source
	for _, r := range results {
		s := Source{Filename: r.Filename, Page: r.Page}
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	return sources
}
