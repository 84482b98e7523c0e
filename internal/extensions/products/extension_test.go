package products

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/extensions/core"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/view"
)

type captureRenderer struct {
	data map[string]any
}

func (r *captureRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.data = data.(map[string]any)
	_, err := io.WriteString(w, name)
	return err
}

func TestProducts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "repo/content/documents/product/kettle.yaml", []byte(`
type: xinmods:product
items:
  title: Kettle
  summary: Boils water
  price: "$20"
  images: [/content/gallery/kettle.jpg]
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "repo/content/documents/product/teapot.yaml", []byte(`
type: xinmods:product
items:
  title: Teapot
`), 0o644))

	hookRegistry := hooks.NewRegistry()
	modelRegistry := models.NewRegistry()
	host := extension.NewHost(hookRegistry, modelRegistry, reload.NewCoordinator())
	require.NoError(t, host.Install(core.New(core.Dependencies{AppName: "Shop"})))
	require.NoError(t, host.Install(New(Dependencies{
		Store:  content.NewFileStore(fs, "repo"),
		Images: imageurl.NewBuilder("/binaries"),
		Models: modelRegistry,
	})))

	e := echo.New()
	renderer := &captureRenderer{}
	e.Renderer = renderer
	host.Mount(e.Group(""), view.NewEndpoints(hookRegistry))

	t.Run("landing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "products/all_products", rec.Body.String())

		list := renderer.data["productList"].([]*content.Document)
		require.Len(t, list, 2)
		assert.Equal(t, "Shop", renderer.data["appName"])

		title, err := modelRegistry.Transform(renderer.data["baseModel"], "pageTitle")
		require.NoError(t, err)
		assert.Equal(t, "Shop", title)

		card, err := models.TransformAs[view.Card](modelRegistry, list[0], "card")
		require.NoError(t, err)
		assert.Equal(t, view.Card{
			Title:       "Kettle",
			Subtitle:    "$20",
			Description: "Boils water",
			Link:        "/product/kettle",
			Image:       "/binaries/content/gallery/kettle.jpg?ops=crop%3D500x500",
		}, card)
	})

	t.Run("detail overrides base model", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/teapot", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		title, err := modelRegistry.Transform(renderer.data["baseModel"], "pageTitle")
		require.NoError(t, err)
		assert.Equal(t, "Teapot", title)

		tags, err := modelRegistry.Transform(renderer.data["product"], "metatags")
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("missing product", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/nothing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("hooks need a request", func(t *testing.T) {
		_, err := hookRegistry.InvokeAll(context.Background(), []string{"beforeRender.product.detail"})
		assert.Error(t, err)
	})
}
