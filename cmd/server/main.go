package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/config"
	"github.com/nfrund/headstart/internal/logging"
	"github.com/nfrund/headstart/internal/server"
)

// AppTemplates can be set at build time to force a template loading strategy.
// Example: go build -ldflags "-X 'main.AppTemplates=embed'"
var AppTemplates string

func main() {
	if AppTemplates != "" {
		os.Setenv("APP_TEMPLATES", AppTemplates)
	}

	cfg := config.New()
	logging.New(cfg.LogFormat, cfg.LogLevel)

	s, err := server.New(cfg, afero.NewOsFs())
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	if err := s.Start(context.Background()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
