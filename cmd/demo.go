package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/trainctl/internal/demoapi"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newDemoCmd() *cobra.Command {
	demo := &cobra.Command{
		Use:   "demo",
		Short: "Local demo backend",
	}
	demo.AddCommand(newDemoServeCmd())
	return demo
}

func newDemoServeCmd() *cobra.Command {
	var (
		addr  string
		db    string
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo training API backed by sqlite",
		Long: `Serve GET /api/<table>, DELETE /api/<table>/<id> and PUT /api/<table>
from a sqlite database seeded with sample training data.

With the default in-memory database every start is fresh. A file database is
seeded on first use, or again with --reset.`,
		Example: `  trainctl demo serve
  trainctl demo serve --addr :9090 --db ./demo.db --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveDemo(ctx, addr, db, reset)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "localhost:8080", "listen address")
	f.StringVar(&db, "db", ":memory:", "sqlite database path")
	f.BoolVar(&reset, "reset", false, "reseed a file database")
	return cmd
}

func openDemoStore(ctx context.Context, path string, reset bool) (*demoapi.Store, error) {
	store, err := demoapi.Open(path)
	if err != nil {
		return nil, err
	}
	tables, err := store.Tables(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if len(tables) > 0 && !reset {
		return store, nil
	}
	data, err := demoapi.SeedData()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.Seed(ctx, data); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func serveDemo(ctx context.Context, addr, db string, reset bool) error {
	lgr := logger.FromContext(ctx)
	store, err := openDemoStore(ctx, db, reset)
	if err != nil {
		return fmt.Errorf("open demo store: %w", err)
	}
	defer func() { _ = store.Close() }()

	srv := &http.Server{
		Addr:              addr,
		Handler:           demoapi.NewServer(store, *lgr).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		lgr.Info("demo API listening", "addr", addr, "db", db)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	lgr.Info("shutting down demo API")
	return srv.Shutdown(shutdownCtx)
}
