package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/view"
)

func TestCore_Registrations(t *testing.T) {
	hookRegistry := hooks.NewRegistry()
	modelRegistry := models.NewRegistry()
	host := extension.NewHost(hookRegistry, modelRegistry, reload.NewCoordinator())
	require.NoError(t, host.Install(New(Dependencies{AppName: "Headstart"})))

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/about", nil), httptest.NewRecorder())

	data, err := hookRegistry.InvokeAllAsMap(context.Background(), []string{"view.common"}, c)
	require.NoError(t, err)
	assert.Equal(t, "Headstart", data["appName"])
	assert.Equal(t, "/about", data["requestPath"])
	assert.Equal(t, view.FlashData{}, data["flashes"])

	title, err := modelRegistry.Transform(data["baseModel"], "pageTitle")
	require.NoError(t, err)
	assert.Equal(t, "Headstart", title)

	class, err := modelRegistry.Transform(DefaultModel(), "bodyClass")
	require.NoError(t, err)
	assert.Equal(t, "Page--default", class)

	tags, err := models.TransformAs[[]view.MetaTag](modelRegistry, DefaultModel(), "metatags")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCore_CommonContextRequiresRequest(t *testing.T) {
	_, err := New(Dependencies{}).commonContext(context.Background())
	assert.Error(t, err)
}
