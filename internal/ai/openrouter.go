package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible OpenRouter API root.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient calls the OpenRouter chat completions endpoint.
type OpenRouterClient struct {
	apiKey string
	ep     *endpoint
}

// NewOpenRouterClient returns a client for baseURL (DefaultOpenRouterBaseURL when empty).
func NewOpenRouterClient(apiKey, baseURL string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *OpenRouterClient {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	ep := newEndpoint(strings.TrimRight(baseURL, "/")+"/chat/completions", httpTimeout, retryMax, baseDelay, maxDelay)
	ep.header.Set("Authorization", "Bearer "+apiKey)
	ep.header.Set("HTTP-Referer", "https://github.com/gabriellmelo/analise-exploratoria-tcc")
	ep.header.Set("X-Title", "Obitos Franca")
	return &OpenRouterClient{apiKey: apiKey, ep: ep}
}

func (c *OpenRouterClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, &MissingKeyError{Provider: ProviderOpenRouter, EnvVar: "OPENROUTER_API_KEY"}
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	var out GenerateResponse
	requestID, err := c.ep.post(ctx, req, &out)
	if err != nil {
		return nil, err
	}
	out.RequestID = requestID
	return &out, nil
}
