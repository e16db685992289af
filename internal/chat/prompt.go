package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
)

// The system instruction is data, not logic: persona, formatting rules
// and the out-of-domain policy live in the template, with one slot for
// the retrieved context and one for the fallback phrase. Deployments can
// override it with PROMPT_PATH.
const defaultSystemTemplate = `You are a helpful assistant answering questions about a library of reference documents.
Use only the provided context and the conversation history to answer the user's question clearly and concisely.
If the context does not contain the answer, reply with exactly this sentence and nothing else: {{.Fallback}}

Context:
{{.Context}}`

type promptData struct {
	Context  string
	Fallback string
}

// Prompt renders the system instruction for one question.
type Prompt struct {
	tmpl     *texttemplate.Template
	fallback string
}

func NewPrompt(path, fallback string) (*Prompt, error) {
	source := defaultSystemTemplate
	if path != "" {
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read prompt template: %w", err)
		}
		source = string(raw)
	}

	tmpl, err := texttemplate.New("system").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl, fallback: fallback}, nil
}

// Render produces the system instruction with the retrieved passages
// joined as the context block.
func (p *Prompt) Render(passages []string) (string, error) {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, promptData{
		Context:  strings.Join(passages, "\n\n"),
		Fallback: p.fallback,
	}); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return sb.String(), nil
}

// Fallback is the exact out-of-context reply the template instructs the
// model to use.
func (p *Prompt) Fallback() string { return p.fallback }
