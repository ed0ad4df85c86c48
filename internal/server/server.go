package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/analysis"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/assistant"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/export"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/history"
)

// Options wires the collaborators of the HTTP API.
type Options struct {
	Router *assistant.Router
	Memo   *export.Memo
	// History, when set, records every answered question.
	History *history.Log
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// Log receives reload and history messages; nil discards them.
	Log io.Writer
	// Quiet disables the per-request access log.
	Quiet bool
}

// Server serves the dataset and the question assistant over HTTP. The dataset is
// swapped atomically on reload; views are immutable so reads need no locking.
type Server struct {
	data   atomic.Pointer[dataset.View]
	router *assistant.Router
	memo   *export.Memo
	lang   analysis.Lang

	histMu  sync.Mutex
	history *history.Log

	origins []string
	log     io.Writer
	quiet   bool
}

// New returns a server over v.
func New(v dataset.View, opts Options) *Server {
	if opts.Router == nil {
		opts.Router = assistant.New(assistant.Config{})
	}
	if opts.Memo == nil {
		opts.Memo = export.NewMemo(10 * time.Minute)
	}
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	s := &Server{
		router:  opts.Router,
		memo:    opts.Memo,
		lang:    opts.Router.Lang(),
		history: opts.History,
		origins: opts.AllowedOrigins,
		log:     opts.Log,
		quiet:   opts.Quiet,
	}
	s.Swap(v)
	return s
}

// Dataset returns the view currently served.
func (s *Server) Dataset() dataset.View { return *s.data.Load() }

// Swap replaces the served dataset and drops cached exports.
func (s *Server) Swap(v dataset.View) {
	s.data.Store(&v)
	s.memo.Flush()
	datasetRecords.Set(float64(v.Len()))
}

// Handler builds the chi router with middleware and every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	if !s.quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.Health)
	r.Get("/api/questions", s.Questions)
	r.Post("/api/ask", s.Ask)
	r.Get("/api/context", s.Context)
	r.Get("/api/stats", s.Stats)
	r.Get("/api/summary", s.Summary)
	r.Get("/api/export.csv", s.ExportCSV)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Loader reads a dataset from path; it matches dataset.Load with fixed options.
type Loader func(path string) (dataset.View, error)

// WatchAndReload reloads the dataset whenever path changes, until ctx is cancelled.
// A failed reload keeps serving the previous dataset.
func (s *Server) WatchAndReload(ctx context.Context, path string, load Loader) error {
	changes, err := dataset.Watch(ctx, path)
	if err != nil {
		return err
	}
	go func() {
		for p := range changes {
			v, err := load(p)
			if err != nil {
				datasetReloads.WithLabelValues("error").Inc()
				fmt.Fprintf(s.log, "⚠ Reload of %s failed, keeping previous data: %v\n", p, err)
				continue
			}
			s.Swap(v)
			datasetReloads.WithLabelValues("ok").Inc()
			fmt.Fprintf(s.log, "✓ Reloaded %s (%d records)\n", p, v.Len())
		}
	}()
	return nil
}

func (s *Server) record(ans *assistant.Answer, year int) {
	if s.history == nil {
		return
	}
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history.Add(history.Entry{
		Question:  ans.Question,
		Year:      year,
		Provider:  ans.Provider,
		Model:     ans.Model,
		Context:   ans.Context,
		Answer:    ans.Text,
		Failed:    ans.Failed,
		RequestID: ans.RequestID,
	})
	if err := s.history.Save(); err != nil {
		fmt.Fprintf(s.log, "⚠ Failed to save history: %v\n", err)
	}
}
