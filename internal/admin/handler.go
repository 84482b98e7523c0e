// Package admin serves the developer overview of the extension registry: hook
// topics, transformers, reload order and the last reload report.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/rendering"
)

// Handler holds dependencies for the admin endpoints.
type Handler struct {
	appName    string
	host       *extension.Host
	hooks      *hooks.Registry
	models     *models.Registry
	reloads    *reload.Coordinator
	components *rendering.Components
}

// Dependencies holds all the services that the admin handler requires.
type Dependencies struct {
	AppName     string
	Host        *extension.Host
	Hooks       *hooks.Registry
	Models      *models.Registry
	Coordinator *reload.Coordinator
	Components  *rendering.Components
}

// NewHandler creates the admin handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		appName:    deps.AppName,
		host:       deps.Host,
		hooks:      deps.Hooks,
		models:     deps.Models,
		reloads:    deps.Coordinator,
		components: deps.Components,
	}
}

// Routes mounts the admin pages and their JSON counterparts on g.
func (h *Handler) Routes(g *echo.Group) {
	g.GET("", h.Index)
	g.POST("/reload", h.Reload)
	g.GET("/hooks.json", h.HooksJSON)
	g.GET("/models.json", h.ModelsJSON)
}

// Snapshot collects the current state of the registries.
func (h *Handler) Snapshot() Snapshot {
	s := Snapshot{
		AppName:    h.appName,
		Topics:     h.hooks.Topics(),
		Transforms: h.models.Keys(),
		Reloads:    h.reloads.Labels(),
		Last:       h.reloads.Last(),
	}
	for _, ext := range h.host.Extensions() {
		s.Extensions = append(s.Extensions, ext.Name())
	}
	return s
}

// Index renders the overview page.
func (h *Handler) Index(c echo.Context) error {
	return h.components.Page(c, http.StatusOK, Page(h.Snapshot()))
}

// Reload runs a reload cycle and answers with the report fragment. A failed
// cycle is still a 200: the fragment shows the failures.
func (h *Handler) Reload(c echo.Context) error {
	report := h.reloads.Trigger(c.Request().Context(), "admin page")
	return h.components.Page(c, http.StatusOK, ReportFragment(report))
}

// HooksJSON lists the hook topics.
func (h *Handler) HooksJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, h.hooks.Topics())
}

// ModelsJSON lists the transformer keys.
func (h *Handler) ModelsJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, h.models.Keys())
}
