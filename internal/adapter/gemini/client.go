package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"bookchat/internal/chat"
)

const (
	embeddingModel  = "gemini-embedding-001"
	generationModel = "gemini-2.0-flash"
	temperature     = 0.3
)

// Client wraps one genai connection for both embedding and generation.
// Indexing and query embedding must use the same model so the vector
// spaces stay comparable.
type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

func (c *Client) Embed(ctx context.Context, content string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", embeddingModel, "length", len(content))
	em := c.client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(content))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}
	return res.Embedding.Values, nil
}

// Generate sends the system instruction, the prior turns and the new
// question as one chat completion and returns the reply text.
func (c *Client) Generate(ctx context.Context, system string, history []chat.Turn, question string) (string, error) {
	model := c.client.GenerativeModel(generationModel)
	model.SetTemperature(temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	cs := model.StartChat()
	for _, turn := range history {
		cs.History = append(cs.History,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(turn.Question)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(turn.Answer)}},
		)
	}

	resp, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "model", generationModel, "error", err)
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
