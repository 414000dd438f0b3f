package transform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	cfg.MaxRetries = 0
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestTransformSuccess(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5-20251001",
			"content": [{"type": "text", "text": "  hello world\n"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 3}
		}`)
	})

	res, err := c.Transform(context.Background(), Request{
		Text:     "helo wrold",
		Action:   "correct",
		Template: "Fix: {text}",
		Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.EqualValues(t, 12, res.InputTokens)
	assert.EqualValues(t, 3, res.OutputTokens)

	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, 2048, body["max_tokens"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Contains(t, string(mustJSON(t, messages[0])), "Fix: helo wrold")
}

func TestTransformServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	})

	_, err := c.Transform(context.Background(), Request{Text: "x", Action: "correct", Template: "{text}"})
	require.Error(t, err)

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, Service, te.Kind)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.False(t, IsUnknownAction(err))
}

func TestTransformEmptyReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"m","type":"message","role":"assistant","model":"m","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`)
	})

	_, err := c.Transform(context.Background(), Request{Text: "x", Action: "correct", Template: "{text}"})
	assert.True(t, IsKind(err, Service))
}

func TestTransformConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultClientConfig()
	cfg.APIKey = "k"
	cfg.BaseURL = url
	cfg.MaxRetries = 0
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.Transform(context.Background(), Request{Text: "x", Action: "correct", Template: "{text}"})
	assert.True(t, IsKind(err, Connection))
}

func TestTransformWithoutTemplate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Transform(context.Background(), Request{Text: "x", Action: "nope"})
	assert.True(t, IsUnknownAction(err))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(DefaultClientConfig())
	assert.True(t, IsKind(err, Config))
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Connection, "connection"},
		{Service, "service"},
		{UnknownAction, "unknown_action"},
		{Config, "config"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
