package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// devSessionSecret is used when APP_DEBUG is set and no secret is configured.
const devSessionSecret = "headstart-development-session-secret"

// Config holds all configuration for the application.
type Config struct {
	AppName string `validate:"required"`
	Addr    string `validate:"required"`
	Debug   bool

	ContentDir    string `validate:"required"`
	TemplatesMode string `validate:"oneof=embed disk"`
	TemplatesDir  string `validate:"required_if=TemplatesMode disk"`
	StaticDir     string
	ScriptsDir    string        `validate:"required"`
	ScriptTimeout time.Duration `validate:"gt=0"`

	WatchPaths []string
	Debounce   time.Duration `validate:"gte=0"`

	SessionSecret string `validate:"required,min=32"`
	AdminToken    string // guards /_admin and /_reload; empty only in debug
	ImageBase     string `validate:"required"`

	// Features holds FEATURE_<NAME>=enabled flags keyed by lowercase name.
	Features map[string]bool

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`
}

// New loads configuration from .env and the environment. Invalid
// configuration is fatal.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := FromEnv(os.Getenv, os.Environ())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds and validates a Config from getenv; environ is scanned for
// feature flags.
func FromEnv(getenv func(string) string, environ []string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	debug, _ := strconv.ParseBool(getenv("APP_DEBUG"))

	cfg := &Config{
		AppName:       get("APP_NAME", "Headstart"),
		Addr:          get("SERVER_ADDR", ":8080"),
		Debug:         debug,
		ContentDir:    get("CONTENT_DIR", "content"),
		TemplatesMode: get("APP_TEMPLATES", "disk"),
		TemplatesDir:  get("TEMPLATES_DIR", "web/templates"),
		StaticDir:     getenv("STATIC_DIR"),
		ScriptsDir:    get("SCRIPTS_DIR", "scripts"),
		SessionSecret: getenv("SESSION_SECRET"),
		AdminToken:    getenv("ADMIN_TOKEN"),
		ImageBase:     get("IMAGE_BASE_URL", "/binaries"),
		LogFormat:     get("LOG_FORMAT", "text"),
		LogLevel:      strings.ToLower(get("LOG_LEVEL", "debug")),
		Features:      features(environ),
	}

	if cfg.SessionSecret == "" && cfg.Debug {
		cfg.SessionSecret = devSessionSecret
	}

	var err error
	if cfg.ScriptTimeout, err = time.ParseDuration(get("SCRIPT_TIMEOUT", "2s")); err != nil {
		return nil, fmt.Errorf("SCRIPT_TIMEOUT: %w", err)
	}
	if cfg.Debounce, err = time.ParseDuration(get("RELOAD_DEBOUNCE", "250ms")); err != nil {
		return nil, fmt.Errorf("RELOAD_DEBOUNCE: %w", err)
	}

	if paths := getenv("WATCH_PATHS"); paths != "" {
		for _, p := range strings.Split(paths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.WatchPaths = append(cfg.WatchPaths, p)
			}
		}
	} else if cfg.Debug {
		cfg.WatchPaths = []string{cfg.ContentDir, cfg.ScriptsDir}
		if cfg.TemplatesMode == "disk" {
			cfg.WatchPaths = append(cfg.WatchPaths, cfg.TemplatesDir)
		}
	}

	// Browsers only get the live reload script when something can change.
	if cfg.Debug {
		if _, set := cfg.Features["livereload"]; !set {
			cfg.Features["livereload"] = true
		}
	}

	if cfg.AdminToken == "" && !cfg.Debug {
		slog.Warn("ADMIN_TOKEN is not set; admin and reload endpoints are disabled")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// features collects FEATURE_<NAME>=enabled variables. Any other value
// disables the feature.
func features(environ []string) map[string]bool {
	flags := make(map[string]bool)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "FEATURE_") {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, "FEATURE_"))
		flags[name] = value == "enabled"
	}
	return flags
}
