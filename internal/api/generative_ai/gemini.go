package generativeAI

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Ensure implementation satisfies the interface
var _ CompletionClient = (*GeminiClient)(nil)

// GeminiClient is the secondary completion provider. It has no native chat
// roles in the shape we use, so the system prompt and message turns are
// flattened into a single prompt.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", types.ErrMissingCredential)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float32) (string, error) {
	var b strings.Builder
	if systemPrompt != "" {
		b.WriteString(systemPrompt)
		b.WriteString("\n\n")
	}
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](temperature)}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(b.String()), config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w: %v", types.ErrUpstream, err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty completion: %w", types.ErrMalformedResponse)
	}
	return text, nil
}
