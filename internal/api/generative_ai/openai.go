package generativeAI

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Ensure implementation satisfies the interface
var _ CompletionClient = (*OpenAIClient)(nil)

// OpenAIClient is the primary, chat-style completion provider.
type OpenAIClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

func NewOpenAIClient(endpoint, apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float32) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: %w", types.ErrMissingCredential)
	}

	chat := make([]Message, 0, len(messages)+1)
	if systemPrompt != "" {
		chat = append(chat, Message{Role: "system", Content: systemPrompt})
	}
	chat = append(chat, messages...)

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    chat,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w: %v", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: %w: status %d", types.ErrUpstream, resp.StatusCode)
	}

	var payload chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("openai: %w: %v", types.ErrMalformedResponse, err)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty completion: %w", types.ErrMalformedResponse)
	}
	return payload.Choices[0].Message.Content, nil
}
