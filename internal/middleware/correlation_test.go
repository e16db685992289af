package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	t.Run("Generates an ID when the header is absent", func(t *testing.T) {
		var seen string
		handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCorrelationID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.NotEqual(t, "unknown", seen)
		assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))
	})

	t.Run("Propagates a caller-supplied ID", func(t *testing.T) {
		var seen string
		handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "corr-42", seen)
		assert.Equal(t, "corr-42", rec.Header().Get("X-Correlation-ID"))
	})

	t.Run("Unset context reads as unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", GetCorrelationID(t.Context()))
	})

	t.Run("WithCorrelationID round trips", func(t *testing.T) {
		ctx := WithCorrelationID(t.Context(), "abc")
		assert.Equal(t, "abc", GetCorrelationID(ctx))
	})
}
