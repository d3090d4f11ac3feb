package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"dirhamflow/internal/core"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client for the given API key and model. baseURL
// overrides the default endpoint when non-empty, which also lets tests
// point the client at a local fake.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Advise implements Advisor with a single chat completion call. An empty
// transaction collection is a valid request; the prompt instructs the
// model to answer with a generic tip in that case.
func (c *Client) Advise(ctx context.Context, txns []core.Transaction) (string, error) {
	prompt, err := buildPrompt(txns)
	if err != nil {
		return "", err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty text")
	}

	slog.DebugContext(ctx, "Advisory response received",
		"model", c.model,
		"transactions", min(len(txns), MaxRecentTransactions),
		"chars", len(text))
	return text, nil
}
