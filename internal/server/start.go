package server

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

	"github.com/nfrund/headstart/internal/reload"
)

const shutdownTimeout = 10 * time.Second

// Start runs the HTTP server together with the reload bus, the live reload
// hub and, when paths are configured, the file watcher. It blocks until
// SIGINT or SIGTERM, or until ctx is canceled, then shuts down gracefully.
// SIGHUP requests a reload.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.hub.Run(ctx)

	if err := s.bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.bridge.Close(); err != nil {
			slog.Error("Failed to close message bridge", "error", err)
		}
	}()

	if len(s.Cfg.WatchPaths) > 0 {
		watcher := reload.NewWatcher(s.Cfg.WatchPaths, s.Cfg.Debounce, s.bus.Request)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start reload watcher: %w", err)
		}
		defer watcher.Close()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if err := s.bus.Request(ctx, "SIGHUP"); err != nil {
					slog.Error("Failed to request reload", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", s.Cfg.Addr, "debug", s.Cfg.Debug)
		if err := s.E.Start(s.Cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("shutting down the server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.E.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
