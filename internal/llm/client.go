// Package llm provides a client for the hosted persona model.
// The model serves an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEndpoint is the local model server.
	DefaultEndpoint = "http://localhost:11434"

	// DefaultModel is the fine-tuned persona model name.
	DefaultModel = "gpt-oss:120b"

	// Fixed nucleus-sampling parameter for every generation request.
	topP = 0.95

	healthTimeout = 5 * time.Second
)

// Client wraps the OpenAI SDK configured for the persona model endpoint.
type Client struct {
	client   *openai.Client
	health   *resty.Client
	endpoint string
	model    string
}

// Config holds the configuration for the model client.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
}

// NewClient creates a new model client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = endpoint + "/v1"

	return &Client{
		client:   openai.NewClientWithConfig(config),
		health:   resty.New().SetBaseURL(endpoint).SetTimeout(healthTimeout),
		endpoint: endpoint,
		model:    cfg.Model,
	}
}

// Endpoint returns the configured endpoint base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Chat sends a chat completion request and returns the single response text.
// Failures are classified as *ModelUnreachableError (transport) or
// *ModelError (non-success status or malformed payload).
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{}

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        topP,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	log.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Msg("Sending chat request to model")

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ModelError{Detail: "no choices in response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK errors onto the engine's error taxonomy.
func (c *Client) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ModelError{StatusCode: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ModelError{StatusCode: reqErr.HTTPStatusCode, Detail: reqErr.Error()}
	}

	return &ModelUnreachableError{Endpoint: c.endpoint, Err: err}
}

// HealthCheck probes the model server's health path. It returns false on any
// failure and never raises.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.health.R().SetContext(ctx).Get("/health")
	if err != nil {
		log.Debug().Err(err).Str("endpoint", c.endpoint).Msg("Model health check failed")
		return false
	}
	return resp.StatusCode() == 200
}
