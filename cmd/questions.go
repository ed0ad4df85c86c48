package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/spf13/cobra"
)

var questionsJSON bool

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the fixed question menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		menu := assistant.Menu()
		if questionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(menu)
		}
		lang := currentLang(config())
		for _, q := range menu {
			fmt.Fprintf(out, "%2d. %s\n", int(q.ID), q.ID.Text(lang))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "print the menu as JSON with both languages")
}
