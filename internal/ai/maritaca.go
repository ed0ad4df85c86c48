package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaritacaBaseURL is the hosted MariTalk API.
	DefaultMaritacaBaseURL = "https://chat.maritaca.ai/api"
	// DefaultMaritacaModel is the model the assistant asks by default.
	DefaultMaritacaModel = "sabia-3"
)

// MaritacaClient talks to the MariTalk chat inference endpoint.
type MaritacaClient struct {
	apiKey string
	ep     *endpoint
}

type maritacaRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	DoSample    bool      `json:"do_sample"`
	Temperature float64   `json:"temperature,omitempty"`
}

type maritacaResponse struct {
	Answer string `json:"answer"`
	Usage  Usage  `json:"usage"`
}

// NewMaritacaClient returns a client for baseURL (DefaultMaritacaBaseURL when empty).
// retryMax counts attempts; zero means a single attempt.
func NewMaritacaClient(apiKey, baseURL string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *MaritacaClient {
	if baseURL == "" {
		baseURL = DefaultMaritacaBaseURL
	}
	ep := newEndpoint(strings.TrimRight(baseURL, "/")+"/chat/inference", httpTimeout, retryMax, baseDelay, maxDelay)
	ep.header.Set("Authorization", "Key "+apiKey)
	return &MaritacaClient{apiKey: apiKey, ep: ep}
}

// Generate sends the conversation and maps the "answer" field to the first choice.
func (c *MaritacaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, &MissingKeyError{Provider: ProviderMaritaca, EnvVar: "MARITACA_API_KEY"}
	}
	if req.Model == "" {
		req.Model = DefaultMaritacaModel
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	mreq := maritacaRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		DoSample:    req.Temperature > 0,
		Temperature: req.Temperature,
	}
	var out maritacaResponse
	requestID, err := c.ep.post(ctx, mreq, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Answer) == "" {
		return nil, fmt.Errorf("decode response: missing answer field")
	}
	return &GenerateResponse{
		Choices:   []Choice{{Message: Message{Role: "assistant", Content: out.Answer}}},
		Usage:     out.Usage,
		RequestID: requestID,
	}, nil
}
