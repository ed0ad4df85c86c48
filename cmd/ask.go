package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	cfgpkg "github.com/gabriellmelo/analise-exploratoria-tcc/internal/config"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/history"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	askID         int
	askYear       int
	askProvider   string
	askModel      string
	askMaxTokens  int
	askDryRun     bool
	askQuiet      bool
	askJSON       bool
	askOutputPath string
	askOllamaHost string
	askTimeoutSec int
	askNoHistory  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a menu question (--id) or free text from the dataset",
	Example: `  obitos ask --id 1
  obitos ask --id 7 --year 2022 --dry-run
  obitos ask "Qual a faixa etária mais afetada?"
  obitos ask --lang en "deaths per weekday" --provider ollama --model llama3:latest`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flags keep their values between invocations in the same process; reset the
		// ones not given in THIS run.
		if f := cmd.Flags(); f != nil {
			provided := map[string]bool{}
			f.Visit(func(fl *pflag.Flag) {
				provided[fl.Name] = true
			})
			if !provided["id"] {
				askID = 0
			}
			if !provided["year"] {
				askYear = 0
			}
			if !provided["provider"] {
				askProvider = ""
			}
			if !provided["model"] {
				askModel = ""
			}
			if !provided["max-tokens"] {
				askMaxTokens = 0
			}
			if !provided["dry-run"] {
				askDryRun = false
			}
			if !provided["json"] {
				askJSON = false
			}
			if !provided["quiet"] {
				askQuiet = false
			}
			if !provided["output"] {
				askOutputPath = ""
			}
			if !provided["no-history"] {
				askNoHistory = false
			}
			if !provided["ollama-host"] {
				askOllamaHost = ""
			}
			if !provided["timeout-sec"] {
				askTimeoutSec = 0
			}
		}
		if askJSON {
			askQuiet = true
		}

		text := ""
		if len(args) == 1 {
			text = strings.TrimSpace(args[0])
		}
		if askID == 0 && text == "" {
			return fmt.Errorf("give a question or --id (see 'obitos questions')")
		}
		if askID != 0 && !assistant.QuestionID(askID).Valid() {
			return fmt.Errorf("unknown question id %d (valid: 1-%d)", askID, len(assistant.Menu()))
		}

		c := config()
		all, _, err := loadDataset(c)
		if err != nil {
			return err
		}
		view := forYear(all, askYear)

		rc := routerConfig(c, runtimeOptions{
			ProviderFlag: askProvider,
			ModelFlag:    askModel,
			OllamaHost:   askOllamaHost,
			TimeoutSec:   askTimeoutSec,
			MaxTokens:    askMaxTokens,
		})
		router := assistant.New(rc)

		var ans *assistant.Answer
		if askID != 0 {
			ans = router.PrepareMenu(assistant.QuestionID(askID), view)
		} else {
			ans = router.PrepareText(text, view)
		}

		out := cmd.OutOrStdout()
		tokens := utils.CountTokens(ans.Prompt)
		if !askQuiet {
			fmt.Fprintf(out, "Question: %s\n", ans.Question)
			fmt.Fprintf(out, "Provider: %s  Model: %s  Max tokens: %d\n", ans.Provider, ans.Model, ans.MaxTokens)
			fmt.Fprintf(out, "Tokens: prompt≈%d\n", tokens)
		}
		if debug {
			bd := utils.TokenBreakdown(map[string]string{"context": ans.Context, "question": ans.Question})
			fmt.Fprintf(os.Stderr, "DEBUG: tokens context≈%d question≈%d\n", bd["context"], bd["question"])
		}
		if mi, ok := ai.LookupModel(ans.Model); ok && utils.ExceedsWindow(ans.Prompt, ans.MaxTokens, mi.ContextTokens) {
			fmt.Fprintf(os.Stderr, "⚠ Prompt (%d tokens) + max-tokens (%d) exceeds %s context window (~%d tokens).\n",
				tokens, ans.MaxTokens, mi.Name, mi.ContextTokens)
		}

		if askDryRun {
			if !askQuiet {
				fmt.Fprintln(out, "\n--dry-run: no API call will be made. Prompt preview below --")
				fmt.Fprintf(out, "Request ID (dry-run): %s\n", dryRunRequestID(ans.Prompt))
			}
			fmt.Fprintln(out, ans.Prompt)
			return nil
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt)
		defer stop()
		router.Dispatch(ctx, ans)

		if !askNoHistory {
			if err := recordHistory(c, ans, askYear); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: history not saved: %v\n", err)
			}
		}
		if ans.RequestID != "" && !askQuiet {
			fmt.Fprintf(out, "Request ID: %s\n", ans.RequestID)
		}
		if err := formatAndWriteOutput(ans, outputOptions{
			JSON:         askJSON,
			Quiet:        askQuiet,
			PromptTokens: tokens,
			OutputPath:   askOutputPath,
			Writer:       out,
		}); err != nil {
			return err
		}
		if ans.Failed {
			if hint := failureHint(ans.Provider, ans.Model, ans.Err); hint != "" {
				fmt.Fprintf(os.Stderr, "⚠ %s\n", hint)
			}
			return fmt.Errorf("%s", ans.Text)
		}
		return nil
	},
}

// recordHistory appends ans to the configured history file.
func recordHistory(c *cfgpkg.Global, ans *assistant.Answer, year int) error {
	path, err := historyPath(c)
	if err != nil {
		return err
	}
	hl, err := history.Open(path)
	if err != nil {
		return err
	}
	hl.Add(history.Entry{
		Question:  ans.Question,
		Year:      year,
		Provider:  ans.Provider,
		Model:     ans.Model,
		Context:   ans.Context,
		Answer:    ans.Text,
		Failed:    ans.Failed,
		RequestID: ans.RequestID,
	})
	return hl.Save()
}

func historyPath(c *cfgpkg.Global) (string, error) {
	if c.HistoryPath != "" {
		return c.HistoryPath, nil
	}
	dir, err := cfgpkg.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askID, "id", 0, "menu question id (see 'obitos questions')")
	askCmd.Flags().IntVar(&askYear, "year", 0, "restrict the dataset to one year")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "LLM provider: maritaca|openrouter|ollama (default from config)")
	askCmd.Flags().StringVar(&askModel, "model", "", "override model (default from config)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "max output tokens for menu questions (default from config)")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "build the prompt and print it without calling the API")
	askCmd.Flags().BoolVar(&askQuiet, "quiet", false, "print only the answer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer record as JSON (implies --quiet)")
	askCmd.Flags().StringVar(&askOutputPath, "output", "", "optional path to write the answer (.json writes the whole record)")
	askCmd.Flags().StringVar(&askOllamaHost, "ollama-host", "", "Ollama host (default from config)")
	askCmd.Flags().IntVar(&askTimeoutSec, "timeout-sec", 0, "request timeout in seconds (overrides config)")
	askCmd.Flags().BoolVar(&askNoHistory, "no-history", false, "do not record the answer in the history file")
}
