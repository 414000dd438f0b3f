package transform

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yok-tottii/typo/internal/prompt"
)

// DefaultModel is the model used when none is configured
const DefaultModel = "claude-haiku-4-5-20251001"

// ClientConfig holds the remote client configuration
type ClientConfig struct {
	APIKey     string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
	BaseURL    string // empty for the public endpoint
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:      DefaultModel,
		MaxTokens:  2048,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

// Client is a Transformer backed by the Anthropic Messages API
type Client struct {
	api    anthropic.Client
	config ClientConfig
}

// NewClient creates a client. A missing API key is reported as a Config error.
func NewClient(config ClientConfig) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, &Error{Kind: Config, Message: "API key is not configured"}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 2048
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Client{
		api:    anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.config.Model
}

// Transform renders the template with the text and sends it as a single user message
func (c *Client) Transform(ctx context.Context, req Request) (Result, error) {
	if req.Template == "" {
		return Result{}, &Error{Kind: UnknownAction, Message: "unknown action: " + req.Action}
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Render(req.Template, req.Text))),
		},
	})
	if err != nil {
		return Result{}, classify(err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return Result{}, &Error{Kind: Service, Message: "empty response"}
	}

	return Result{
		Text:         text,
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}, nil
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:       Service,
			StatusCode: apiErr.StatusCode,
			Message:    "service returned an error",
			Err:        err,
		}
	}
	return &Error{Kind: Connection, Message: "could not reach the service", Err: err}
}
