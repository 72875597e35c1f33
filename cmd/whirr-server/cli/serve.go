package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"whirr"
	"whirr/httpapi"
	"whirr/internal/wconfig"
	"whirr/job"
	"whirr/store/sqlstore"
)

// shutdownTimeout bounds how long runServer waits for the HTTP server
// and background workers to drain on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if cfg.Server.PostgresDSN == "" {
		return fmt.Errorf("server.postgres_dsn is required")
	}

	log := slog.Default()

	db, err := sqlstore.NewPostgresDB(cfg.Server.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := sqlstore.InitDB(context.Background(), db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	store := sqlstore.New(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reaper := whirr.NewReapWorker(store, &whirr.ReapConfig{
		Interval: wconfig.Duration(cfg.Server.ReapInterval),
	}, log)
	if err := reaper.Start(ctx); err != nil {
		return fmt.Errorf("start reaper: %w", err)
	}

	var cleaner *whirr.CleanWorker
	if cfg.Server.Clean.Enabled {
		status, err := job.ParseStatus(cfg.Server.Clean.Status)
		if err != nil {
			return fmt.Errorf("server.clean.status: %w", err)
		}
		cleaner = whirr.NewCleanWorker(store, &whirr.CleanConfig{
			Status:   status,
			Interval: wconfig.Duration(cfg.Server.Clean.Interval),
			Before:   cfg.Server.Clean.Before,
			Delta:    wconfig.OptionalDuration(cfg.Server.Clean.Delta),
		}, log)
		if err := cleaner.Start(ctx); err != nil {
			return fmt.Errorf("start cleaner: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      httpapi.New(store, cfg.DataDir, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("whirr-server listening", "addr", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping...")
	case err := <-serveErr:
		if err != nil {
			log.Error("http server error", "err", err)
		}
		stop()
	}

	go func() {
		forceCh := make(chan os.Signal, 1)
		signal.Notify(forceCh, syscall.SIGINT, syscall.SIGTERM)
		<-forceCh
		log.Error("second signal received, forcing exit")
		os.Exit(1)
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = reaper.Stop(shutdownTimeout)
		if cleaner != nil {
			_ = cleaner.Stop(shutdownTimeout)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("whirr-server stopped")
	case <-shutdownCtx.Done():
		log.Error("shutdown timed out, forcing exit")
		os.Exit(1)
	}
	return nil
}
