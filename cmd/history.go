package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/history"
	"github.com/spf13/cobra"
)

var (
	histLimit int
	histJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously answered questions",
	Example: `  obitos history --limit 5
  obitos history show 3f2a
  obitos history clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hl, err := openHistory()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		entries := hl.Recent(histLimit)
		if histJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No questions asked yet")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tASKED\tMODEL\tSTATUS\tQUESTION")
		for _, e := range entries {
			status := "ok"
			if e.Failed {
				status = "failed"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", shortID(e.ID), e.AskedAt.Format("2006-01-02 15:04"), e.Model, status, e.Question)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry with its context and answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hl, err := openHistory()
		if err != nil {
			return err
		}
		e, err := hl.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID: %s\n", e.ID)
		fmt.Fprintf(out, "Asked: %s\n", e.AskedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider: %s  Model: %s\n", e.Provider, e.Model)
		if e.Year != 0 {
			fmt.Fprintf(out, "Year: %d\n", e.Year)
		}
		if e.RequestID != "" {
			fmt.Fprintf(out, "Request ID: %s\n", e.RequestID)
		}
		fmt.Fprintf(out, "\nQuestion: %s\n", e.Question)
		fmt.Fprintf(out, "\n--- Context ---\n%s\n", e.Context)
		fmt.Fprintf(out, "\n--- Answer ---\n%s\n", e.Answer)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		hl, err := openHistory()
		if err != nil {
			return err
		}
		n := len(hl.Entries)
		hl.Clear()
		if err := hl.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d entries from %s\n", n, hl.Path())
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openHistory() (*history.Log, error) {
	path, err := historyPath(config())
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "number of entries to list (0 for all)")
	historyCmd.Flags().BoolVar(&histJSON, "json", false, "emit entries as JSON")
}
