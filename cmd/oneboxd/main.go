// Command oneboxd runs the Onebox mail aggregator: an HTTP API over a
// local SQLite store, with scheduled and on-demand IMAP synchronization.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/api"
	"github.com/nhle/onebox/internal/config"
	"github.com/nhle/onebox/internal/credential"
	"github.com/nhle/onebox/internal/logging"
	"github.com/nhle/onebox/internal/notify"
	"github.com/nhle/onebox/internal/store"
	"github.com/nhle/onebox/internal/suggest"
	"github.com/nhle/onebox/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oneboxd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("ONEBOX_CONFIG")
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Path)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	password := syncer.PasswordFunc(credential.ResolverFor(cfg.Credentials.Backend))
	orch := syncer.NewOrchestrator(st, syncer.IMAPDialer, password, logger)
	engine := suggest.NewEngine(st, st)
	notifier := notify.New(cfg.Notify.SlackWebhookURL, logger)

	var storePassword func(accountID, secret string) error
	if cfg.Credentials.Backend == credential.BackendKeyring {
		storePassword = credential.Set
	}

	server := api.NewServer(st, orch, engine, notifier, logger, cfg.Sync.DefaultDays, storePassword)

	var scheduler *syncer.Scheduler
	if cfg.Sync.Enabled {
		scheduler = syncer.NewScheduler(
			st, orch,
			time.Duration(cfg.Sync.IntervalSec)*time.Second,
			cfg.Sync.DefaultDays,
			logger,
		)
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}
