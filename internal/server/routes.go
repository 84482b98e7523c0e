package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/admin"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/livereload"
	"github.com/nfrund/headstart/internal/middleware"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

// assetMaxAge is the Cache-Control max-age of /assets outside debug mode.
const assetMaxAge = 7 * 24 * 60 * 60

// RegisterRoutes sets up all the application routes. The admin and reload
// endpoints are only mounted when they are protected by a token or the
// server runs in debug mode.
func (s *Server) RegisterRoutes() {
	e := s.E

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, s.metrics},
	}))

	assets := e.Group("/assets", s.assetHeaders)
	assets.StaticFS("/", afero.NewIOFS(s.static))

	if s.Cfg.AdminToken != "" || s.Cfg.Debug {
		auth := middleware.AdminAuth(s.Cfg.AdminToken)

		e.POST("/_reload", s.reload, auth, middleware.ReloadRateLimiter())

		adminHandler := admin.NewHandler(admin.Dependencies{
			AppName:     s.Cfg.AppName,
			Host:        s.host,
			Hooks:       do.MustInvoke[*hooks.Registry](s.container),
			Models:      do.MustInvoke[*models.Registry](s.container),
			Coordinator: s.coordinator,
			Components:  s.components,
		})
		adminHandler.Routes(e.Group("/_admin", auth))
	}

	if s.Cfg.Debug {
		e.GET("/_livereload", livereload.NewHandler(s.hub).ServeWS)
	}

	s.host.Mount(e.Group(""), do.MustInvoke[*view.Endpoints](s.container))
}

// assetHeaders lets other origins load assets and caches them outside debug.
func (s *Server) assetHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		if s.Cfg.Debug {
			h.Set("Cache-Control", "no-cache")
		} else {
			h.Set("Cache-Control", "public, max-age="+strconv.Itoa(assetMaxAge))
		}
		return next(c)
	}
}

// reload requests a reload cycle. With ?wait=true the cycle runs in the
// request and the report is returned; otherwise the request is queued on the
// bus and answered with 202.
func (s *Server) reload(c echo.Context) error {
	ctx := c.Request().Context()

	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); wait {
		report := s.coordinator.Trigger(ctx, "http request")
		status := http.StatusOK
		if !report.OK() {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, report)
	}

	if err := s.bus.Request(ctx, "http request"); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "reload request failed").SetInternal(err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "requested"})
}
