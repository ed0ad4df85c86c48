package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/export"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/history"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveWatch     bool
	serveOrigins   []string
	serveNoHistory bool
	serveQuiet     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset, reports and the question assistant over HTTP",
	Example: `  obitos serve
  obitos serve --addr 127.0.0.1:9000 --watch
  obitos serve --origins http://localhost:5173`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config()
		v, path, err := loadDataset(c)
		if err != nil {
			return err
		}

		ttl := 10 * time.Minute
		if c.ExportCacheTTLSec > 0 {
			ttl = time.Duration(c.ExportCacheTTLSec) * time.Second
		}
		opts := server.Options{
			Router:         assistant.New(routerConfig(c, runtimeOptions{})),
			Memo:           export.NewMemo(ttl),
			AllowedOrigins: serveOrigins,
			Log:            os.Stderr,
			Quiet:          serveQuiet,
		}
		if !serveNoHistory {
			hp, err := historyPath(c)
			if err != nil {
				return err
			}
			hl, err := history.Open(hp)
			if err != nil {
				return err
			}
			opts.History = hl
		}
		srv := server.New(v, opts)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveWatch {
			lo := loadOptions(c)
			load := func(p string) (dataset.View, error) { return dataset.Load(p, lo) }
			if err := srv.WatchAndReload(ctx, path, load); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Watching %s for changes\n", path)
		}

		addr := serveAddr
		if addr == "" {
			addr = c.ServerAddr
		}
		if addr == "" {
			addr = ":8080"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %d records from %s on %s\n", v.Len(), path, addr)
		if len(serveOrigins) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  CORS origins: %s\n", strings.Join(serveOrigins, ", "))
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the dataset when the file changes")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origins", nil, "allowed CORS origins (default: any)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "do not record answered questions")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "disable the access log")
}
