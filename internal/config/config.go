package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey            string  `mapstructure:"api_key" yaml:"api_key"`
	MaritacaAPIKey    string  `mapstructure:"maritaca_api_key" yaml:"-"`
	OpenRouterAPIKey  string  `mapstructure:"openrouter_api_key" yaml:"-"`
	DefaultProvider   string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel      string  `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	FreeTextMaxTokens int     `mapstructure:"free_text_max_tokens" yaml:"free_text_max_tokens"`
	Temperature       float64 `mapstructure:"temperature" yaml:"temperature"`
	Language          string  `mapstructure:"language" yaml:"language"`

	// Dataset
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	YearFrom  int    `mapstructure:"year_from" yaml:"year_from"`
	YearTo    int    `mapstructure:"year_to" yaml:"year_to"`
	City      string `mapstructure:"city" yaml:"city"`

	HistoryPath string `mapstructure:"history_path" yaml:"history_path"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	OllamaHost      string `mapstructure:"ollama_host" yaml:"ollama_host"`
	MaritacaBaseURL string `mapstructure:"maritaca_base_url" yaml:"maritaca_base_url"`

	// Serving and export
	ServerAddr        string `mapstructure:"server_addr" yaml:"server_addr"`
	ExportCacheTTLSec int    `mapstructure:"export_cache_ttl_sec" yaml:"export_cache_ttl_sec"`
	PostgresDSN       string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

// Dir returns ~/.obitos.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".obitos"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.obitos/config.yaml, creating the directory if necessary.
// Provider keys read from the environment are never written.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, file, env, and defaults.
// Precedence: env > config file > defaults. A missing .env or config file is not an error.
func Load(cfgFile string) (*Global, error) {
	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("OBITOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("maritaca_api_key", "MARITACA_API_KEY")
	_ = v.BindEnv("openrouter_api_key", "OPENROUTER_API_KEY")

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HistoryPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.HistoryPath = filepath.Join(dir, "history.json")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	// empty defaults register the keys so AutomaticEnv reaches them in Unmarshal
	v.SetDefault("api_key", "")
	v.SetDefault("history_path", "")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("default_provider", "maritaca")
	v.SetDefault("default_model", "sabia-3")
	v.SetDefault("max_tokens", 500)
	v.SetDefault("free_text_max_tokens", 200)
	v.SetDefault("temperature", 0.0)
	v.SetDefault("language", "pt")
	v.SetDefault("data_path", "obitos_final.csv")
	v.SetDefault("delimiter", ";")
	v.SetDefault("year_from", 2019)
	v.SetDefault("year_to", 2023)
	v.SetDefault("city", "Franca")
	// a question is a single call; retries are opt-in
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("maritaca_base_url", "https://chat.maritaca.ai/api")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("export_cache_ttl_sec", 600)
}

// KeyFor returns the API key of provider: the provider variable first, then api_key.
func (c *Global) KeyFor(provider string) string {
	switch strings.ToLower(provider) {
	case "maritaca":
		if c.MaritacaAPIKey != "" {
			return c.MaritacaAPIKey
		}
	case "openrouter":
		if c.OpenRouterAPIKey != "" {
			return c.OpenRouterAPIKey
		}
	}
	return c.APIKey
}

// Delim returns the configured CSV delimiter as a rune, or 0 for the loader default.
func (c *Global) Delim() rune {
	d := c.Delimiter
	switch strings.ToLower(d) {
	case "tab", `\t`:
		return '\t'
	case "":
		return 0
	}
	return []rune(d)[0]
}
