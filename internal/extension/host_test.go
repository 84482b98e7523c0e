package extension

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/view"
)

// fakeExtension registers whatever its register func declares.
type fakeExtension struct {
	name     string
	register func(r *Registrar) error
	calls    int
}

func (f *fakeExtension) Name() string { return f.name }

func (f *fakeExtension) Register(r *Registrar) error {
	f.calls++
	return f.register(r)
}

type routedExtension struct {
	fakeExtension
}

func (e *routedExtension) Routes(g *echo.Group, v *view.Endpoints) {
	g.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, e.name) })
}

func value(v any) hooks.Handler {
	return func(ctx context.Context, args ...any) (any, error) { return v, nil }
}

func constant(v any) models.Transformer {
	return func(ctx any) (any, error) { return v, nil }
}

func newHost() (*Host, *hooks.Registry, *models.Registry, *reload.Coordinator) {
	hookRegistry := hooks.NewRegistry()
	modelRegistry := models.NewRegistry()
	reloads := reload.NewCoordinator()
	return NewHost(hookRegistry, modelRegistry, reloads), hookRegistry, modelRegistry, reloads
}

func TestHost_InstallRegistersAndSubscribes(t *testing.T) {
	host, hookRegistry, modelRegistry, reloads := newHost()

	ext := &fakeExtension{name: "blogging", register: func(r *Registrar) error {
		assert.Equal(t, "blogging", r.Owner())
		r.Hook("view.blogging", value(map[string]any{"a": 1}))
		r.Transforms("xinmods:blog", map[string]models.Transformer{
			"link":      constant("/blog/x"),
			"bodyClass": constant("Page--blog"),
		})
		return nil
	}}
	require.NoError(t, host.Install(ext))

	assert.Equal(t, []string{"blogging"}, reloads.Labels())
	assert.Equal(t, 1, hookRegistry.Count())
	assert.True(t, modelRegistry.Has("xinmods:blog", "link"))
	assert.Equal(t, []hooks.TopicInfo{{Topic: "view.blogging", Handlers: 1, Owners: []string{"blogging"}}}, hookRegistry.Topics())
}

func TestHost_ReloadIsIdempotent(t *testing.T) {
	host, hookRegistry, modelRegistry, reloads := newHost()

	core := &fakeExtension{name: "core", register: func(r *Registrar) error {
		r.Hook("view.common", value(map[string]any{"from": "core", "app": "headstart"}))
		r.Transform("__default__", "pageTitle", constant("Home"))
		return nil
	}}
	nav := &fakeExtension{name: "navigation", register: func(r *Registrar) error {
		r.Hook("view.common", value(map[string]any{"from": "navigation"}))
		r.Transform("xinmods:navigation", "navbar", constant("nav"))
		return nil
	}}
	require.NoError(t, host.Install(core))
	require.NoError(t, host.Install(nav))

	before, err := hookRegistry.InvokeAllAsMap(context.Background(), []string{"view"})
	require.NoError(t, err)
	keysBefore := modelRegistry.Keys()

	for i := 0; i < 5; i++ {
		report := reloads.Trigger(context.Background(), "test")
		require.True(t, report.OK())
	}

	after, err := hookRegistry.InvokeAllAsMap(context.Background(), []string{"view"})
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, "navigation", after["from"])
	assert.Equal(t, 2, hookRegistry.Count())
	assert.Equal(t, keysBefore, modelRegistry.Keys())
	assert.Equal(t, 6, core.calls)
}

func TestHost_FailedRebuildKeepsPreviousRegistrations(t *testing.T) {
	host, hookRegistry, modelRegistry, reloads := newHost()

	broken := false
	ext := &fakeExtension{name: "products", register: func(r *Registrar) error {
		r.Hook("beforeRender.product", value(map[string]any{"ok": true}))
		r.Transform("xinmods:product", "card", constant("card"))
		if broken {
			return errors.New("manifest unreadable")
		}
		return nil
	}}
	require.NoError(t, host.Install(ext))

	broken = true
	report := reloads.Trigger(context.Background(), "edit")

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "products", report.Failures[0].Label)
	assert.Equal(t, 1, hookRegistry.Count())
	assert.True(t, modelRegistry.Has("xinmods:product", "card"))
}

func TestHost_TransformConflictRejectsWholeExtension(t *testing.T) {
	host, hookRegistry, _, reloads := newHost()

	require.NoError(t, host.Install(&fakeExtension{name: "one", register: func(r *Registrar) error {
		r.Transform("xinmods:blog", "card", constant(1))
		return nil
	}}))

	err := host.Install(&fakeExtension{name: "two", register: func(r *Registrar) error {
		r.Hook("view.two", value(nil))
		r.Transform("xinmods:blog", "card", constant(2))
		return nil
	}})

	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.Zero(t, hookRegistry.Count())
	assert.Equal(t, []string{"one"}, reloads.Labels())
}

func TestHost_ForcedOverrideSurvivesReload(t *testing.T) {
	host, hookRegistry, modelRegistry, reloads := newHost()

	version := "v1"
	require.NoError(t, host.Install(&fakeExtension{name: "blogging", register: func(r *Registrar) error {
		r.Hook("view.blogging", value(map[string]any{"version": version}))
		r.Transform("xinmods:blog", "card", constant("plain card"))
		return nil
	}}))
	require.NoError(t, host.Install(&fakeExtension{name: "theme", register: func(r *Registrar) error {
		r.Transform("xinmods:blog", "card", constant("themed card"), models.Force())
		return nil
	}}))

	version = "v2"
	report := reloads.Trigger(context.Background(), "edit")
	require.True(t, report.OK(), "failures: %v", report.Failures)

	got, err := hookRegistry.InvokeAllAsMap(context.Background(), []string{"view.blogging"})
	require.NoError(t, err)
	assert.Equal(t, "v2", got["version"])

	card, err := modelRegistry.Transform(map[string]any{"type": "xinmods:blog"}, "card")
	require.NoError(t, err)
	assert.Equal(t, "themed card", card)
}

func TestHost_InstallRejectsDuplicateName(t *testing.T) {
	host, _, _, _ := newHost()
	noop := func(r *Registrar) error { return nil }

	require.NoError(t, host.Install(&fakeExtension{name: "core", register: noop}))
	assert.Error(t, host.Install(&fakeExtension{name: "core", register: noop}))
	assert.Len(t, host.Extensions(), 1)
}

func TestHost_Mount(t *testing.T) {
	host, hookRegistry, _, _ := newHost()
	noop := func(r *Registrar) error { return nil }

	require.NoError(t, host.Install(&fakeExtension{name: "plain", register: noop}))
	require.NoError(t, host.Install(&routedExtension{fakeExtension{name: "routed", register: noop}}))

	e := echo.New()
	host.Mount(e.Group(""), view.NewEndpoints(hookRegistry))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "routed", rec.Body.String())
}
