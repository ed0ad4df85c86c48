package ai

import (
	"context"
	"sort"
	"time"
)

// Runtime is implemented by every LLM backend the assistant can talk to.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used for selection.
const (
	ProviderMaritaca   = "maritaca"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries the knobs shared by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// APIKey authenticates hosted providers.
	APIKey string
	// BaseURL overrides the hosted endpoint.
	BaseURL string
	// Host is the local Ollama address.
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

// Providers lists the registered provider names in alphabetical order.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	// A question is answered with a single request; hosted runtimes do not retry
	// unless the config asks for it.
	RegisterRuntime(ProviderMaritaca, func(c RuntimeConfig) Runtime {
		return NewMaritacaClient(c.APIKey, c.BaseURL, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime {
		return NewOpenRouterClient(c.APIKey, c.BaseURL, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		if c.RetryMax <= 0 {
			c.RetryMax = 2
		}
		if c.BaseDelay <= 0 {
			c.BaseDelay = 200 * time.Millisecond
		}
		if c.MaxDelay <= 0 {
			c.MaxDelay = 1 * time.Second
		}
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
}
