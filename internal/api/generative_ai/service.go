package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
)

// Message is one turn of a role-based chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the single contract both model providers implement.
// Providers without native chat roles flatten the messages into one prompt.
type CompletionClient interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float32) (string, error)
}

// Ensure implementation satisfies the interface
var _ CompletionClient = (*FallbackClient)(nil)

// FallbackClient tries each client in order and returns the first success.
// This is ordered failover, not a retry loop: each client gets exactly one
// attempt, and the last error propagates when all fail.
type FallbackClient struct {
	logger  *slog.Logger
	clients []CompletionClient
	rec     *api.Recorder
}

func NewFallbackClient(rec *api.Recorder, logger *slog.Logger, clients ...CompletionClient) *FallbackClient {
	return &FallbackClient{logger: logger, clients: clients, rec: rec}
}

func (f *FallbackClient) Name() string { return "fallback" }

func (f *FallbackClient) Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float32) (string, error) {
	ctx, span := otel.Tracer("LLMGateway").Start(ctx, "Complete", trace.WithAttributes(
		attribute.Int("llm.message_count", len(messages)),
	))
	defer span.End()

	if len(f.clients) == 0 {
		return "", fmt.Errorf("llm: no completion clients configured")
	}

	var lastErr error
	for i, client := range f.clients {
		text, err := client.Complete(ctx, systemPrompt, messages, temperature)
		if err == nil {
			span.SetAttributes(attribute.String("llm.provider", client.Name()))
			if i > 0 {
				f.rec.LLMFallback(ctx, client.Name())
				f.logger.InfoContext(ctx, "Completion served by fallback provider",
					slog.String("provider", client.Name()))
			}
			return text, nil
		}
		lastErr = err
		span.RecordError(err)
		f.logger.WarnContext(ctx, "Completion provider failed",
			slog.String("provider", client.Name()), slog.Any("error", err))
	}

	span.SetStatus(codes.Error, "all completion providers failed")
	return "", fmt.Errorf("llm: all providers failed: %w", lastErr)
}
