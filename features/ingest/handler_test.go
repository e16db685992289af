package ingest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerHandler(t *testing.T) {
	t.Run("Defaults to the configured directory", func(t *testing.T) {
		publisher := &fakePublisher{}
		handler := NewHandler(NewService(&fakeRepo{}, publisher), "books")

		req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Trigger(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"directory":"books"`)
	})

	t.Run("Explicit directory wins", func(t *testing.T) {
		handler := NewHandler(NewService(&fakeRepo{}, &fakePublisher{}), "books")

		req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"directory":"/srv/extra"}`))
		rec := httptest.NewRecorder()
		handler.Trigger(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"directory":"/srv/extra"`)
	})
}

func TestListRunsHandler(t *testing.T) {
	t.Run("Empty list serializes as an array", func(t *testing.T) {
		handler := NewHandler(NewService(&fakeRepo{}, &fakePublisher{}), "books")

		rec := httptest.NewRecorder()
		handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/ingest/runs", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
		assert.Contains(t, rec.Body.String(), `"count":0`)
	})

	t.Run("Lists recorded runs", func(t *testing.T) {
		repo := &fakeRepo{runs: []Run{{ID: "run-1", Directory: "books", Status: "completed"}}}
		handler := NewHandler(NewService(repo, &fakePublisher{}), "books")

		rec := httptest.NewRecorder()
		handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/ingest/runs", nil))

		assert.Contains(t, rec.Body.String(), `"run-1"`)
		assert.Contains(t, rec.Body.String(), `"count":1`)
	})
}
