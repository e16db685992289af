package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChunkCounter struct {
	count int
	err   error
}

func (f *fakeChunkCounter) Count(ctx context.Context) (int, error) { return f.count, f.err }

type fakeQuestionCounter struct {
	count int
	err   error
}

func (f *fakeQuestionCounter) CountQuestions(ctx context.Context) (int, error) {
	return f.count, f.err
}

func TestGetStats(t *testing.T) {
	t.Run("Reports both counters", func(t *testing.T) {
		handler := NewHandler(&fakeChunkCounter{count: 321}, &fakeQuestionCounter{count: 14})

		rec := httptest.NewRecorder()
		handler.GetStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"indexed_chunks":321`)
		assert.Contains(t, rec.Body.String(), `"questions_asked":14`)
	})

	t.Run("A failing counter reports -1 without failing the request", func(t *testing.T) {
		handler := NewHandler(&fakeChunkCounter{err: errors.New("weaviate down")}, &fakeQuestionCounter{count: 14})

		rec := httptest.NewRecorder()
		handler.GetStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"indexed_chunks":-1`)
		assert.Contains(t, rec.Body.String(), `"questions_asked":14`)
	})
}
