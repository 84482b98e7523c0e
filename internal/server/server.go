package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/app"
	"github.com/nfrund/headstart/internal/config"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/livereload"
	"github.com/nfrund/headstart/internal/middleware"
	"github.com/nfrund/headstart/internal/pubsub"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/rendering"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	container   do.Injector
	host        *extension.Host
	coordinator *reload.Coordinator
	components  *rendering.Components
	hub         *livereload.Hub
	bus         *reload.Bus
	bridge      *pubsub.WatermillBridge
	static      afero.Fs
	metrics     *prometheus.Registry
}

// New creates a new Server instance. site is the file system content,
// scripts and disk templates are read from.
func New(cfg *config.Config, site afero.Fs) (*Server, error) {
	container := app.NewContainer(cfg, site)

	host, err := do.Invoke[*extension.Host](container)
	if err != nil {
		return nil, fmt.Errorf("install extensions: %w", err)
	}

	s := &Server{
		E:           echo.New(),
		Cfg:         cfg,
		container:   container,
		host:        host,
		coordinator: do.MustInvoke[*reload.Coordinator](container),
		components:  do.MustInvoke[*rendering.Components](container),
		hub:         do.MustInvoke[*livereload.Hub](container),
		bus:         do.MustInvoke[*reload.Bus](container),
		bridge:      do.MustInvoke[*pubsub.WatermillBridge](container),
		static:      do.MustInvokeNamed[afero.Fs](container, app.StaticFS),
		metrics:     prometheus.NewRegistry(),
	}

	e := s.E
	e.HideBanner = true
	e.Debug = cfg.Debug
	e.Renderer = do.MustInvoke[*rendering.Templates](container)
	setupErrorHandling(e)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)

	// HTTP metrics go to a per-server registry so several servers can live in
	// one process; /metrics gathers it together with the default registry.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "headstart",
		Registerer: s.metrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/_livereload"
		},
	}))

	// Flash messages live in a cookie session.
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	if cfg.Debug {
		s.coordinator.Observe(s.hub.Observer())
	}
	s.RegisterRoutes()
	return s, nil
}

// Host returns the extension host.
func (s *Server) Host() *extension.Host {
	return s.host
}

// Coordinator returns the reload coordinator.
func (s *Server) Coordinator() *reload.Coordinator {
	return s.coordinator
}
