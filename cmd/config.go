package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	cfgpkg "github.com/gabriellmelo/analise-exploratoria-tcc/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set obitos configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "api_key: %s\n", mask(cfg.APIKey))
		if cfg.MaritacaAPIKey != "" {
			fmt.Fprintf(out, "maritaca_api_key (env): %s\n", mask(cfg.MaritacaAPIKey))
		}
		if cfg.OpenRouterAPIKey != "" {
			fmt.Fprintf(out, "openrouter_api_key (env): %s\n", mask(cfg.OpenRouterAPIKey))
		}
		fmt.Fprintf(out, "default_provider: %s\n", cfg.DefaultProvider)
		fmt.Fprintf(out, "default_model: %s\n", cfg.DefaultModel)
		fmt.Fprintf(out, "max_tokens: %d\n", cfg.MaxTokens)
		fmt.Fprintf(out, "free_text_max_tokens: %d\n", cfg.FreeTextMaxTokens)
		fmt.Fprintf(out, "temperature: %.3f\n", cfg.Temperature)
		fmt.Fprintf(out, "language: %s\n", cfg.Language)
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		fmt.Fprintf(out, "year_from: %d\n", cfg.YearFrom)
		fmt.Fprintf(out, "year_to: %d\n", cfg.YearTo)
		fmt.Fprintf(out, "city: %s\n", cfg.City)
		fmt.Fprintf(out, "history_path: %s\n", cfg.HistoryPath)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "ollama_host: %s\n", cfg.OllamaHost)
		fmt.Fprintf(out, "server_addr: %s\n", cfg.ServerAddr)
		fmt.Fprintf(out, "export_cache_ttl_sec: %d\n", cfg.ExportCacheTTLSec)
		if cfg.PostgresDSN != "" {
			fmt.Fprintf(out, "postgres_dsn: %s\n", mask(cfg.PostgresDSN))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		atoi := func(min int) (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < min {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "default_model":
			cfg.DefaultModel = val
		case "default_provider":
			p := normalizeProvider(val)
			if _, ok := ai.GetRuntime(p, ai.RuntimeConfig{}); !ok {
				return fmt.Errorf("invalid default_provider: %s (use %s)", val, strings.Join(ai.Providers(), ", "))
			}
			cfg.DefaultProvider = p
		case "max_tokens":
			i, err := atoi(1)
			if err != nil {
				return err
			}
			cfg.MaxTokens = i
		case "free_text_max_tokens":
			i, err := atoi(1)
			if err != nil {
				return err
			}
			cfg.FreeTextMaxTokens = i
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for temperature: %v", val)
			}
			cfg.Temperature = f
		case "language":
			switch strings.ToLower(val) {
			case "pt", "en":
				cfg.Language = string(analysis.ParseLang(val))
			default:
				return fmt.Errorf("invalid language: %s (use pt or en)", val)
			}
		case "data_path":
			cfg.DataPath = val
		case "delimiter":
			cfg.Delimiter = val
		case "year_from":
			i, err := atoi(0)
			if err != nil {
				return err
			}
			cfg.YearFrom = i
		case "year_to":
			i, err := atoi(0)
			if err != nil {
				return err
			}
			cfg.YearTo = i
		case "city":
			cfg.City = val
		case "history_path":
			cfg.HistoryPath = val
		case "http_timeout_sec":
			i, err := atoi(1)
			if err != nil {
				return err
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := atoi(1)
			if err != nil {
				return err
			}
			cfg.RetryMaxAttempts = i
		case "ollama_host":
			cfg.OllamaHost = val
		case "maritaca_base_url":
			cfg.MaritacaBaseURL = val
		case "server_addr":
			cfg.ServerAddr = val
		case "export_cache_ttl_sec":
			i, err := atoi(0)
			if err != nil {
				return err
			}
			cfg.ExportCacheTTLSec = i
		case "postgres_dsn":
			cfg.PostgresDSN = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
