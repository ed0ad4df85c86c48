package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/ai"
	"github.com/spf13/cobra"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and registered providers",
	Example: `  obitos models
  obitos models --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		list := ai.ListModels()
		if modelsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tMODEL\tCONTEXT\tDEFAULT")
		for _, m := range list {
			def := ""
			if ai.DefaultModel(m.Provider) == m.Name {
				def = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", m.Provider, m.Name, m.ContextTokens, def)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nProviders: %v\n", ai.Providers())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "emit the catalog as JSON")
}
