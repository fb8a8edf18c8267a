package generativeAI

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// stubClient is a canned CompletionClient for failover tests.
type stubClient struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Complete(ctx context.Context, systemPrompt string, messages []Message, temperature float32) (string, error) {
	s.calls++
	return s.text, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackClient_PrimarySucceeds(t *testing.T) {
	primary := &stubClient{name: "primary", text: "answer"}
	secondary := &stubClient{name: "secondary", text: "unused"}
	fc := NewFallbackClient(nil, testLogger(), primary, secondary)

	text, err := fc.Complete(context.Background(), "sys", nil, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "answer", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "secondary must not be touched on primary success")
}

func TestFallbackClient_FailsOverToSecondary(t *testing.T) {
	primary := &stubClient{name: "primary", err: errors.New("quota exceeded")}
	secondary := &stubClient{name: "secondary", text: "backup answer"}
	fc := NewFallbackClient(nil, testLogger(), primary, secondary)

	text, err := fc.Complete(context.Background(), "sys", nil, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "backup answer", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackClient_AllProvidersFail(t *testing.T) {
	lastErr := errors.New("secondary down")
	primary := &stubClient{name: "primary", err: errors.New("primary down")}
	secondary := &stubClient{name: "secondary", err: lastErr}
	fc := NewFallbackClient(nil, testLogger(), primary, secondary)

	_, err := fc.Complete(context.Background(), "sys", nil, 0.7)
	require.Error(t, err)

	assert.ErrorIs(t, err, lastErr, "the last provider error must stay unwrappable")
	assert.Equal(t, 1, primary.calls, "each provider gets exactly one attempt")
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackClient_NoClientsConfigured(t *testing.T) {
	fc := NewFallbackClient(nil, testLogger())

	_, err := fc.Complete(context.Background(), "sys", nil, 0.7)
	assert.Error(t, err)
}

func TestOpenAIClient_SendsChatRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.InDelta(t, 0.7, float64(req.Temperature), 1e-6)

		io.WriteString(w, `{"choices":[{"message":{"content":"hello"}}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "key", "gpt-4o-mini", 2*time.Second)
	text, err := client.Complete(context.Background(), "be brief", []Message{{Role: "user", Content: "hi"}}, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "hello", text)
}

func TestOpenAIClient_MissingCredential(t *testing.T) {
	client := NewOpenAIClient("http://unused", "", "gpt-4o-mini", time.Second)

	_, err := client.Complete(context.Background(), "", nil, 0.7)
	assert.ErrorIs(t, err, types.ErrMissingCredential)
}

func TestOpenAIClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "key", "gpt-4o-mini", 2*time.Second)
	_, err := client.Complete(context.Background(), "", nil, 0.7)
	assert.ErrorIs(t, err, types.ErrUpstream)
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "key", "gpt-4o-mini", 2*time.Second)
	_, err := client.Complete(context.Background(), "", nil, 0.7)
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
}
