package cmd

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	cfgpkg "github.com/gabriellmelo/analise-exploratoria-tcc/internal/config"
)

type runtimeOptions struct {
	ProviderFlag string
	ModelFlag    string
	OllamaHost   string
	TimeoutSec   int
	MaxTokens    int
}

// normalizeProvider maps user-facing aliases to registered provider names.
func normalizeProvider(name string) string {
	p := strings.ToLower(strings.TrimSpace(name))
	switch p {
	case "maritalk", "sabia":
		return ai.ProviderMaritaca
	case "local":
		return ai.ProviderOllama
	case "openai", "anthropic", "google", "gemini", "meta", "llama", "deepseek":
		return ai.ProviderOpenRouter
	}
	return p
}

// routerConfig resolves provider, model, credentials and transport settings for the
// question router. Flags win over config; config wins over built-in defaults.
func routerConfig(c *cfgpkg.Global, opts runtimeOptions) assistant.Config {
	httpTimeout := 60 * time.Second
	retryMax := 1
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if c.HTTPTimeoutSec > 0 {
		httpTimeout = time.Duration(c.HTTPTimeoutSec) * time.Second
	}
	if c.RetryMaxAttempts > 0 {
		retryMax = c.RetryMaxAttempts
	}
	if c.RetryBaseDelayMs > 0 {
		baseDelay = time.Duration(c.RetryBaseDelayMs) * time.Millisecond
	}
	if c.RetryMaxDelayMs > 0 {
		maxDelay = time.Duration(c.RetryMaxDelayMs) * time.Millisecond
	}
	if opts.TimeoutSec > 0 {
		httpTimeout = time.Duration(opts.TimeoutSec) * time.Second
	}

	provider := normalizeProvider(opts.ProviderFlag)
	if provider == "" {
		provider = normalizeProvider(c.DefaultProvider)
	}
	if provider == "" {
		provider = ai.ProviderMaritaca
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
	switch provider {
	case ai.ProviderMaritaca:
		rc.BaseURL = c.MaritacaBaseURL
	case ai.ProviderOllama:
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			host = c.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
	}

	maxTokens := c.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	return assistant.Config{
		Provider:      provider,
		Model:         selectModel(c, provider, opts.ModelFlag),
		APIKey:        c.KeyFor(provider),
		Transport:     rc,
		Lang:          currentLang(c),
		City:          c.City,
		MenuMaxTokens: maxTokens,
		TextMaxTokens: c.FreeTextMaxTokens,
		Temperature:   c.Temperature,
	}
}

// selectModel picks the explicit model, then the configured default when it belongs
// to provider (or is not in the catalog), then the provider default.
func selectModel(c *cfgpkg.Global, provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c != nil && c.DefaultModel != "" {
		mi, known := ai.LookupModel(c.DefaultModel)
		if !known || mi.Provider == provider {
			return c.DefaultModel
		}
	}
	return ai.DefaultModel(provider)
}

func currentLang(c *cfgpkg.Global) analysis.Lang {
	if langFlag != "" {
		return analysis.ParseLang(langFlag)
	}
	return analysis.ParseLang(c.Language)
}

// dryRunRequestID is a deterministic id for a prompt that was never sent.
func dryRunRequestID(prompt string) string {
	sum := sha1.Sum([]byte(prompt))
	return fmt.Sprintf("sim_%x", sum[:6])
}

// failureHint turns a typed runtime error into a suggestion for the user.
// It returns "" when there is nothing more useful to say than the error itself.
func failureHint(provider, model string, err error) string {
	var (
		keyErr  *ai.MissingKeyError
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &keyErr):
		return fmt.Sprintf("export %s or add api_key in config (~/.obitos/config.yaml)", keyErr.EnvVar)
	case errors.As(err, &unreach):
		if provider == ai.ProviderOllama {
			return fmt.Sprintf("Ollama not reachable at %s. Ensure Ollama is running and the host is correct (OBITOS_OLLAMA_HOST or config 'ollama_host')", unreach.Host)
		}
		return "endpoint unreachable. Check your network and provider settings"
	case errors.As(err, &authErr):
		return "authentication failed: check the API key of provider " + provider
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Sprintf("rate limited, try again in ~%ds", int(rlErr.RetryAfter.Seconds()))
		}
		return "rate limited by provider, please retry"
	case errors.As(err, &nfErr):
		if provider == ai.ProviderOllama {
			return fmt.Sprintf("local model not available. Install it with 'ollama pull %s' or choose another model", model)
		}
		return fmt.Sprintf("model not found (%s). See 'obitos models' for known names", model)
	case errors.As(err, &brErr):
		return "request invalid. Try reducing max-tokens"
	case errors.As(err, &qErr):
		return "quota/billing issue. Check your provider account"
	case errors.As(err, &sErr):
		return "provider appears unavailable (server error). Please retry later"
	}
	return ""
}

type outputOptions struct {
	JSON         bool
	Quiet        bool
	PromptTokens int
	OutputPath   string
	Writer       io.Writer
}

// formatAndWriteOutput prints the answer and optionally saves it. A .json output path
// stores the whole answer record; anything else stores the answer text.
func formatAndWriteOutput(ans *assistant.Answer, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	record := func() ([]byte, error) {
		out := struct {
			*assistant.Answer
			PromptTokens int `json:"prompt_tokens"`
		}{ans, opts.PromptTokens}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal output: %w", err)
		}
		return b, nil
	}

	switch {
	case opts.JSON:
		b, err := record()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case ans.Failed:
		// the caller reports failures on stderr
	case opts.Quiet:
		fmt.Fprintln(w, ans.Text)
	default:
		fmt.Fprintln(w, "\n=== AI Response ===")
		fmt.Fprintln(w, ans.Text)
	}

	if opts.OutputPath == "" {
		return nil
	}
	data := []byte(ans.Text)
	if strings.EqualFold(filepath.Ext(opts.OutputPath), ".json") {
		b, err := record()
		if err != nil {
			return err
		}
		data = b
	}
	if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !opts.Quiet {
		fmt.Fprintf(w, "\n💾 Saved output to %s\n", opts.OutputPath)
	}
	return nil
}
