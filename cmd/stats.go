package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	statsYear int
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show headline metrics, with the change against the previous year",
	Example: `  obitos stats
  obitos stats --year 2022 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config()
		all, _, err := loadDataset(c)
		if err != nil {
			return err
		}
		h := analysis.Headlines(all, statsYear, currentLang(c))
		out := cmd.OutOrStdout()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(h)
		}
		if h.Year != 0 {
			fmt.Fprintf(out, "Year: %d\n", h.Year)
		} else {
			fmt.Fprintln(out, "Year: all")
		}
		for _, m := range h.Metrics {
			if m.Delta != nil {
				fmt.Fprintf(out, "%s: %d (%+d)\n", m.Label, m.Value, *m.Delta)
				continue
			}
			fmt.Fprintf(out, "%s: %d\n", m.Label, m.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "year to report (default: all years)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit metrics as JSON")
}
