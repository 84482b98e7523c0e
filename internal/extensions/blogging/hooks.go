package blogging

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/view"
)

const (
	articlesPerAuthor = 50
	latestOnHome      = 3
)

func (e *Extension) registerHooks(r *extension.Registrar) {
	r.Hook("view.blogging.landing", hooks.Async(e.landing))
	r.Hook("view.blogging.authors.landing", hooks.Async(e.authorsLanding))
	r.Hook("view.blogging.authors.detail", hooks.Async(e.authorDetail))
	r.Hook("view.blogging.taglanding", hooks.Async(e.tagLanding))
	r.Hook("view.blogging.category", hooks.Async(e.category))
	r.Hook("view.blogging.article", hooks.Async(e.article))
	r.Hook("view.home", hooks.Async(e.latest))
}

// latest puts the newest articles on the home page.
func (e *Extension) latest(ctx context.Context, args ...any) (any, error) {
	res, err := e.store.Query(ctx, content.Query{Type: TypeBlog, Descending: true, Limit: latestOnHome})
	if err != nil {
		return nil, err
	}
	return map[string]any{"latestArticles": res.Documents}, nil
}

func (e *Extension) landing(ctx context.Context, args ...any) (any, error) {
	res, err := e.store.Query(ctx, content.Query{Type: TypeBlog, Descending: true})
	if err != nil {
		return nil, err
	}
	return map[string]any{"articles": res.Documents, "totalSize": res.TotalSize}, nil
}

func (e *Extension) authorsLanding(ctx context.Context, args ...any) (any, error) {
	res, err := e.store.Query(ctx, content.Query{Type: TypeBlogAuthor, Descending: true})
	if err != nil {
		return nil, err
	}
	return map[string]any{"authors": res.Documents, "totalSize": res.TotalSize}, nil
}

func (e *Extension) authorDetail(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	author, err := e.get(ctx, AuthorsPath+c.Param("authorName"))
	if err != nil {
		return nil, err
	}

	posts, err := e.store.Query(ctx, content.Query{
		Type:       TypeBlog,
		Where:      map[string]string{"author": author.Path},
		Descending: true,
		Limit:      articlesPerAuthor,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"baseModel":   author,
		"author":      author,
		"authorImage": e.images.From(author.String("image")).URL(),
		"articles":    posts.Documents,
	}, nil
}

func (e *Extension) tagLanding(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	tag := c.Param("storyTag")
	res, err := e.store.Query(ctx, content.Query{Type: TypeBlog, Tags: []string{tag}, Descending: true})
	if err != nil {
		return nil, err
	}
	return map[string]any{"tag": tag, "articles": res.Documents}, nil
}

func (e *Extension) category(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	category := c.Param("category")
	res, err := e.store.Query(ctx, content.Query{
		Type:       TypeBlog,
		PathPrefix: ArticlesPath + category + "/",
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"category": category, "articles": res.Documents}, nil
}

func (e *Extension) article(ctx context.Context, args ...any) (any, error) {
	c, err := view.RequestContext(args)
	if err != nil {
		return nil, err
	}
	articlePath := strings.Trim(c.Param("category")+"/"+c.Param("*"), "/")
	article, err := e.get(ctx, ArticlesPath+articlePath)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"baseModel": article,
		"article":   article,
		"heroImage": e.images.From(article.String("heroImage")).Crop(1200, 500).URL(),
	}
	if authorPath := article.String("author"); authorPath != "" {
		if author, err := e.store.Get(ctx, authorPath); err == nil {
			data["author"] = author
		}
	}
	return data, nil
}

// get loads a document and turns a missing one into a 404.
func (e *Extension) get(ctx context.Context, docPath string) (*content.Document, error) {
	doc, err := e.store.Get(ctx, docPath)
	if errors.Is(err, content.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "page not found").SetInternal(err)
	}
	return doc, err
}
