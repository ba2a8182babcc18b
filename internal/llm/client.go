// Package llm talks to a hosted OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second
)

// Request is one chat completion call.
type Request struct {
	Model  string
	System string
	// Prompts are sent as consecutive user messages, in order.
	Prompts     []string
	Temperature float32
}

// Completer submits a prompt and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string // empty means the public OpenAI endpoint
	Timeout time.Duration
	// RequestsPerSecond limits request starts; zero disables the limit.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client is a rate-limited chat completion client.
type Client struct {
	api     *openai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient creates a client. The API key must be non-empty.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("API key is empty")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}, nil
}

// Complete sends the request and returns the trimmed text of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Prompts)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, p := range req.Prompts {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: p,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", req.Model, translateError(err))
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Compile-time interface conformance check.
var _ Completer = (*Client)(nil)
