// Package core provides the registrations every page relies on: the shared
// view context and the transformers of the "__default__" type used by pages
// without a document of their own.
package core

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/view"
)

// DefaultType is the type tag of pages that are not backed by a document.
const DefaultType = "__default__"

// Dependencies holds the settings the core extension requires.
type Dependencies struct {
	AppName string
}

// Extension implements extension.Extension and extension.Router.
type Extension struct {
	appName string
}

// New creates the core extension.
func New(deps Dependencies) *Extension {
	return &Extension{appName: deps.AppName}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "core"
}

// DefaultModel is the base model of pages without a document.
func DefaultModel() map[string]any {
	return map[string]any{"type": DefaultType}
}

// Register declares the common view hook and the default transformers.
func (e *Extension) Register(r *extension.Registrar) error {
	r.Hook("view.common", e.commonContext)

	r.Transform(DefaultType, "pageTitle", func(ctx any) (any, error) {
		return e.appName, nil
	})
	r.Transform(DefaultType, "bodyClass", func(ctx any) (any, error) {
		return "Page--default", nil
	})
	r.Transform(DefaultType, "metatags", func(ctx any) (any, error) {
		return []view.MetaTag{}, nil
	})
	return nil
}

// Routes mounts the home page. Other extensions add to it through "view.home".
func (e *Extension) Routes(g *echo.Group, v *view.Endpoints) {
	g.GET("/", v.View("home", "view.common", "view.home"))
}

// commonContext supplies the values the layout needs on every page. Later
// hooks override baseModel when the page shows a document.
func (e *Extension) commonContext(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"appName":     e.appName,
		"requestPath": c.Request().URL.Path,
		"flashes":     view.GetFlashData(c),
		"baseModel":   DefaultModel(),
	}, nil
}
