package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvu/firemerge/internal/api"
	"github.com/lvu/firemerge/internal/config"
	"github.com/lvu/firemerge/internal/firefly"
	"github.com/lvu/firemerge/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	sessionMaxAge   = 30 * 24 * time.Hour
)

func newServeCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	statements, err := session.Open(cfg.Session.DBPath)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer statements.Close()

	if pruned, err := statements.Prune(ctx, sessionMaxAge); err != nil {
		log.Warn("pruning stale sessions failed", "error", err)
	} else if pruned > 0 {
		log.Info("pruned stale sessions", "count", pruned)
	}

	ledger := firefly.New(cfg.Firefly.BaseURL, cfg.Firefly.Token, firefly.WithLogger(log))

	srv := &http.Server{
		Addr: cfg.Server.Listen,
		Handler: api.NewRouter(api.Dependencies{
			Logger:     log,
			Ledger:     ledger,
			Statements: statements,
		}),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
