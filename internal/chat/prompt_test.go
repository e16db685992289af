package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	const fallback = "I could not find an answer to that in the indexed documents."

	t.Run("Default template carries context and fallback", func(t *testing.T) {
		p, err := NewPrompt("", fallback)
		require.NoError(t, err)

		system, err := p.Render([]string{"passage one", "passage two"})
		require.NoError(t, err)
		assert.Contains(t, system, "passage one\n\npassage two")
		assert.Contains(t, system, fallback)
		assert.Equal(t, fallback, p.Fallback())
	})

	t.Run("Empty context still renders", func(t *testing.T) {
		p, err := NewPrompt("", fallback)
		require.NoError(t, err)

		system, err := p.Render(nil)
		require.NoError(t, err)
		assert.Contains(t, system, "Context:")
	})

	t.Run("Template override from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt.tmpl")
		require.NoError(t, os.WriteFile(path, []byte("Custom persona. {{.Context}} / {{.Fallback}}"), 0o644))

		p, err := NewPrompt(path, fallback)
		require.NoError(t, err)

		system, err := p.Render([]string{"ctx"})
		require.NoError(t, err)
		assert.Equal(t, "Custom persona. ctx / "+fallback, system)
	})

	t.Run("Missing override file fails fast", func(t *testing.T) {
		_, err := NewPrompt(filepath.Join(t.TempDir(), "absent.tmpl"), fallback)
		assert.Error(t, err)
	})

	t.Run("Broken template fails fast", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.tmpl")
		require.NoError(t, os.WriteFile(path, []byte("{{.Unclosed"), 0o644))

		_, err := NewPrompt(path, fallback)
		assert.Error(t, err)
	})
}
