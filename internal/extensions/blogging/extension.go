// Package blogging serves the blog: landing, category, tag, article and author
// pages, plus the transformers for blog documents.
package blogging

import (
	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

// Document types handled by this extension.
const (
	TypeBlog       = "xinmods:blog"
	TypeBlogImage  = "xinmods:blogimage"
	TypeBlogAuthor = "xinmods:blogauthor"
)

// Repository locations.
const (
	ArticlesPath = "/content/documents/blog/articles/"
	AuthorsPath  = "/content/documents/blog/authors/"
)

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

// New creates the blogging extension.
func New(deps Dependencies) *Extension {
	return &Extension{
		store:  deps.Store,
		images: deps.Images,
		models: deps.Models,
	}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "blogging"
}

// Register declares the page hooks and the blog transformers.
func (e *Extension) Register(r *extension.Registrar) error {
	e.registerHooks(r)
	e.registerModels(r)
	return nil
}

// Routes mounts the blog pages.
func (e *Extension) Routes(g *echo.Group, v *view.Endpoints) {
	g.GET("/blog", v.View("blogging/blog_landing",
		"view.common", "view.blogging.landing"))

	g.GET("/blog/authors", v.View("blogging/author_landing",
		"view.common", "view.blogging.authors.landing"))

	g.GET("/blog/authors/:authorName", v.View("blogging/author_detail",
		"view.common", "view.blogging.authors.detail"))

	g.GET("/blog/tag/:storyTag", v.View("blogging/blog_taglanding",
		"view.common", "view.blogging.taglanding"))

	g.GET("/blog/:category", v.View("blogging/blog_category",
		"view.common", "view.blogging.category"))

	g.GET("/blog/:category/*", v.View("blogging/blog_detail",
		"view.common", "view.blogging.article"))
}
