package products

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/extensions/core"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

// TypeProduct is the document type of products.
const TypeProduct = "xinmods:product"

// ProductsPath is the repository folder holding product documents.
const ProductsPath = "/content/documents/product/"

// Dependencies holds all the services that the extension requires.
type Dependencies struct {
	Store  content.Store
	Images *imageurl.Builder
	Models *models.Registry
}

// Extension implements extension.Extension and extension.Router.
type Extension struct {
	store  content.Store
	images *imageurl.Builder
	models *models.Registry
}

// New creates the products extension.
func New(deps Dependencies) *Extension {
	return &Extension{
		store:  deps.Store,
		images: deps.Images,
		models: deps.Models,
	}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "products"
}

// Routes mounts the product pages.
func (e *Extension) Routes(g *echo.Group, v *view.Endpoints) {
	g.GET("/products", v.View("products/all_products",
		"view.common", "beforeRender.common", "beforeRender.product.landing"))

	g.GET("/product/:name", v.View("products/product",
		"view.common", "beforeRender.common", "beforeRender.product.detail"))
}

// Register declares the product hooks and transformers.
func (e *Extension) Register(r *extension.Registrar) error {
	r.Hook("beforeRender.product.landing", hooks.Async(e.landing))
	r.Hook("beforeRender.product.detail", hooks.Async(e.detail))

	r.Transforms(TypeProduct, map[string]models.Transformer{
		"card":      e.card,
		"link":      link,
		"pageTitle": title,
		"metatags":  metaTags,
		"bodyClass": func(ctx any) (any, error) { return "Page--product", nil },
	})
	return nil
}

func (e *Extension) landing(ctx context.Context, args ...any) (any, error) {
	res, err := e.store.Query(ctx, content.Query{Type: TypeProduct, PathPrefix: "/content/documents"})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"productList": res.Documents,
		"baseModel":   core.DefaultModel(),
	}, nil
}

func (e *Extension) detail(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	product, err := e.store.Get(ctx, ProductsPath+c.Param("name"))
	if errors.Is(err, content.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "product not found").SetInternal(err)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"product":   product,
		"baseModel": product,
	}, nil
}

func (e *Extension) card(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	url, err := models.TransformAs[string](e.models, doc, "link")
	if err != nil {
		return nil, err
	}

	var image string
	if images := doc.Strings("images"); len(images) > 0 {
		image = e.images.From(images[0]).Crop(500, 500).URL()
	}
	return view.Card{
		Title:       doc.String("title"),
		Subtitle:    doc.String("price"),
		Description: doc.String("summary"),
		Link:        url,
		Image:       image,
	}, nil
}

func link(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	return "/product/" + doc.Name(), nil
}

func title(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.String("title"), nil
}

func metaTags(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	var tags []view.MetaTag
	if summary := doc.String("summary"); summary != "" {
		tags = append(tags, view.MetaTag{Name: "description", Content: summary})
	}
	return tags, nil
}
