package ai

import "sort"

// ModelInfo describes a model the assistant knows how to address.
type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int // approximate context window
}

var models = map[string]ModelInfo{
	"sabia-3":                   {Name: "sabia-3", Provider: ProviderMaritaca, ContextTokens: 32000},
	"sabiazinho-3":              {Name: "sabiazinho-3", Provider: ProviderMaritaca, ContextTokens: 32000},
	"openai/gpt-4o-mini":        {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000},
	"deepseek/deepseek-r1:free": {Name: "deepseek/deepseek-r1:free", Provider: ProviderOpenRouter, ContextTokens: 128000},
	"llama3:latest":             {Name: "llama3:latest", Provider: ProviderOllama, ContextTokens: 8192},
}

var defaultModels = map[string]string{
	ProviderMaritaca:   DefaultMaritacaModel,
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3:latest",
}

// LookupModel returns catalog info for a model name.
func LookupModel(name string) (ModelInfo, bool) {
	m, ok := models[name]
	return m, ok
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// ListModels returns the catalog sorted by provider, then name.
func ListModels() []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Name < out[j].Name
	})
	return out
}
