package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/gabriellmelo/analise-exploratoria-tcc/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	debug    bool
	dataPath string
	langFlag string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "obitos",
	Short: "Explore traffic fatality records and ask questions about them",
	Long: `obitos loads the traffic fatality dataset of a municipality, answers a fixed menu of
questions (or free text) by building a textual context from the records and sending it
to a language model, and exposes the same data as reports, exports and an HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.obitos/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset file (.csv, .tsv or .xlsx; overrides config)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "language of contexts and answers: pt or en (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if f.Changed("data") && dataPath != "" {
		cfg.DataPath = dataPath
	}
	if f.Changed("lang") && langFlag != "" {
		cfg.Language = langFlag
	}
}

// config returns the loaded configuration, or an empty one when loading failed.
// Every consumer treats zero values as "use the built-in default".
func config() *cfgpkg.Global {
	if cfg == nil {
		return &cfgpkg.Global{}
	}
	return cfg
}
