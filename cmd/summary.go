package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	sumYear       int
	sumOutputPath string
	sumJSON       bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report dataset coverage: rows, missing values and top values per column",
	Example: `  obitos summary
  obitos summary --year 2022 --output gaps.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config()
		all, path, err := loadDataset(c)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if sumYear != 0 {
			name = fmt.Sprintf("%s (%d)", name, sumYear)
		}
		rep := analysis.Summarize(name, forYear(all, sumYear))

		var content string
		if sumJSON {
			b, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			content = string(b) + "\n"
		} else {
			content = rep.Markdown()
		}
		if sumOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		}
		if err := os.WriteFile(sumOutputPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().IntVar(&sumYear, "year", 0, "restrict the report to one year")
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "write the report to a file instead of stdout")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit the report as JSON")
}
