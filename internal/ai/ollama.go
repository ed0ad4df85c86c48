package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultOllamaHost is the usual local Ollama address.
const DefaultOllamaHost = "http://127.0.0.1:11434"

// OllamaClient is a minimal client for a local Ollama runtime.
type OllamaClient struct {
	host string
	ep   *endpoint
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// NewOllamaClient creates a client for host (DefaultOllamaHost when empty).
func NewOllamaClient(host string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *OllamaClient {
	if host == "" {
		host = DefaultOllamaHost
	}
	host = strings.TrimRight(host, "/")
	ep := newEndpoint(host+"/api/chat", httpTimeout, retryMax, baseDelay, maxDelay)
	ep.host = host
	return &OllamaClient{host: host, ep: ep}
}

// Generate sends a non-streaming chat request.
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	oreq := ollamaChatRequest{Model: req.Model, Messages: req.Messages, Options: map[string]any{}}
	if req.Temperature > 0 {
		oreq.Options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		oreq.Options["num_predict"] = req.MaxTokens
	}
	var out ollamaChatResponse
	if _, err := c.ep.post(ctx, oreq, &out); err != nil {
		return nil, err
	}
	return &GenerateResponse{
		Choices:   []Choice{{Message: Message{Role: "assistant", Content: out.Message.Content}}},
		RequestID: fmt.Sprintf("ollama_%d", time.Now().UnixNano()),
	}, nil
}
