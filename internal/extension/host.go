package extension

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/view"
)

// Host owns the registries on behalf of the installed extensions.
type Host struct {
	hooks   *hooks.Registry
	models  *models.Registry
	reloads *reload.Coordinator

	mu        sync.Mutex
	installed []Extension
}

// NewHost creates a host over the given registries.
func NewHost(hookRegistry *hooks.Registry, modelRegistry *models.Registry, reloads *reload.Coordinator) *Host {
	return &Host{
		hooks:   hookRegistry,
		models:  modelRegistry,
		reloads: reloads,
	}
}

// Install registers ext and subscribes the same registration to reloads under
// the extension's name. A failing first registration is returned and the
// extension is not installed.
func (h *Host) Install(ext Extension) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, other := range h.installed {
		if other.Name() == ext.Name() {
			return fmt.Errorf("extension %q already installed", ext.Name())
		}
	}

	if err := h.Rebuild(ext); err != nil {
		return fmt.Errorf("install extension %q: %w", ext.Name(), err)
	}

	h.reloads.OnReload(ext.Name(), func(ctx context.Context) error {
		return h.Rebuild(ext)
	})
	h.installed = append(h.installed, ext)

	slog.Info("Installed extension", "name", ext.Name())
	return nil
}

// Rebuild replaces everything ext registered with a fresh registration. The
// transform batch is applied first; if it is rejected neither registry
// changes. Rebuilding N times leaves the registries as rebuilding once does.
func (h *Host) Rebuild(ext Extension) error {
	r := newRegistrar(ext.Name())
	if err := ext.Register(r); err != nil {
		return err
	}

	if err := h.models.ReplaceOwner(r.owner, r.transforms); err != nil {
		return err
	}
	added := h.hooks.ReplaceOwner(r.owner, r.hooks)

	slog.Debug("Registered extension", "name", r.owner, "hooks", added, "transforms", len(r.transforms))
	return nil
}

// Mount adds the routes of every installed extension that implements Router,
// in install order.
func (h *Host) Mount(g *echo.Group, v *view.Endpoints) {
	for _, ext := range h.Extensions() {
		if router, ok := ext.(Router); ok {
			router.Routes(g, v)
			slog.Debug("Mounted extension routes", "name", ext.Name())
		}
	}
}

// Extensions returns the installed extensions in install order.
func (h *Host) Extensions() []Extension {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]Extension(nil), h.installed...)
}
