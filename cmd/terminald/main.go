// Command terminald runs the development backend for the terminal client:
// instrument search, the user layout store, the AI query endpoint, and the
// quote stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketterm/internal/config"
	"marketterm/internal/devserver"
	"marketterm/internal/localstore"
	"marketterm/internal/util"
)

func main() {
	cfgPath := os.Getenv("MARKETTERM_CONFIG")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	store, err := localstore.Open(cfg.Storage.StatePath, logger)
	if err != nil {
		logger.Error("opening state database", "path", cfg.Storage.StatePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := devserver.New(store, cfg.Server.AIRateLimitPerMin, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("terminald listening", "addr", addr, "state_db", cfg.Storage.StatePath)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("terminald stopped")
}
