// Package view builds page handlers whose render context is assembled from
// hook results.
package view

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/hooks"
)

// Endpoints creates echo handlers backed by a hook registry.
type Endpoints struct {
	hooks *hooks.Registry
}

// NewEndpoints creates Endpoints that read hooks from registry.
func NewEndpoints(registry *hooks.Registry) *Endpoints {
	return &Endpoints{hooks: registry}
}

// Context invokes every hook stored under one of the topic prefixes with the
// request's echo.Context as the only argument and merges the results.
func (e *Endpoints) Context(c echo.Context, topics ...string) (map[string]any, error) {
	return e.hooks.InvokeAllAsMap(c.Request().Context(), topics, c)
}

// View returns a handler that renders template with the context built from
// topics. A hook error aborts the request and is returned unmodified, so hooks
// can answer with an *echo.HTTPError such as a 404.
func (e *Endpoints) View(template string, topics ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := e.Context(c, topics...)
		if err != nil {
			slog.Debug("View context failed", "template", template, "path", c.Request().URL.Path, "error", err)
			return err
		}
		return c.Render(http.StatusOK, template, data)
	}
}
