package cmd

import (
	"fmt"
	"strings"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/spf13/cobra"
)

var (
	ctxID          int
	ctxYear        int
	ctxPrintPrompt bool
)

var contextCmd = &cobra.Command{
	Use:   "context [question]",
	Short: "Print the context built for a question without calling a model",
	Example: `  obitos context --id 3
  obitos context "óbitos por dia da semana" --year 2021
  obitos context --id 1 --prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if len(args) == 1 {
			text = strings.TrimSpace(args[0])
		}
		if ctxID == 0 && text == "" {
			return fmt.Errorf("give a question or --id (see 'obitos questions')")
		}
		if ctxID != 0 && !assistant.QuestionID(ctxID).Valid() {
			return fmt.Errorf("unknown question id %d (valid: 1-%d)", ctxID, len(assistant.Menu()))
		}
		c := config()
		all, _, err := loadDataset(c)
		if err != nil {
			return err
		}
		router := assistant.New(routerConfig(c, runtimeOptions{}))
		view := forYear(all, ctxYear)
		var ans *assistant.Answer
		if ctxID != 0 {
			ans = router.PrepareMenu(assistant.QuestionID(ctxID), view)
		} else {
			ans = router.PrepareText(text, view)
		}
		out := cmd.OutOrStdout()
		if ctxPrintPrompt {
			fmt.Fprintln(out, ans.Prompt)
			return nil
		}
		fmt.Fprintln(out, ans.Context)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().IntVar(&ctxID, "id", 0, "menu question id")
	contextCmd.Flags().IntVar(&ctxYear, "year", 0, "restrict the dataset to one year")
	contextCmd.Flags().BoolVar(&ctxPrintPrompt, "prompt", false, "print the full prompt instead of the context")
}
