package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microsocial/app/config"
	"microsocial/app/metrics"
	"microsocial/app/repositories"
	"microsocial/app/routes"
)

// RunAppServer opens the store and serves the API until SIGINT or SIGTERM.
func RunAppServer(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.RequireSecret(); err != nil {
		return err
	}

	store, err := repositories.Open(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("opened database", "path", cfg.DataDir)

	srv, err := newServer(cfg, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	logger.Info("server started", "addr", ln.Addr().String())

	return serve(ctx, srv, ln, cfg.ShutdownTimeout, logger)
}

func newServer(cfg *config.Config, store *repositories.Store, logger *slog.Logger) (*http.Server, error) {
	router, err := routes.SetupRoutes(routes.Options{
		Store:   store,
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}, nil
}

// serve runs srv on ln until ctx is done, then drains in-flight requests
// for at most timeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}
