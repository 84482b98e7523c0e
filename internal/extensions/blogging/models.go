package blogging

import (
	"fmt"
	"strings"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

func (e *Extension) registerModels(r *extension.Registrar) {
	r.Transforms(TypeBlog, map[string]models.Transformer{
		"card":      e.blogCard,
		"link":      blogLink,
		"pageTitle": documentItem("title"),
		"metatags":  noMetaTags,
		"bodyClass": constant("Page--blog"),
	})

	r.Transform(TypeBlogImage, "slides", e.blogImageSlides)

	r.Transforms(TypeBlogAuthor, map[string]models.Transformer{
		"card":      e.authorCard,
		"link":      authorLink,
		"pageTitle": documentItem("name"),
		"metatags":  noMetaTags,
		"bodyClass": constant("Page--blogAuthor"),
	})
}

func (e *Extension) blogCard(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	link, err := models.TransformAs[string](e.models, doc, "link")
	if err != nil {
		return nil, err
	}
	return view.Card{
		Link:        link,
		Title:       doc.String("title"),
		Image:       e.images.From(doc.String("heroImage")).Crop(500, 350).URL(),
		Description: doc.String("summary"),
	}, nil
}

func blogLink(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	return "/blog/" + strings.TrimPrefix(doc.Path, ArticlesPath), nil
}

// blogImageSlides converts an image block embedded in an article into
// carousel slides. The block is a map such as
//
//	{type: xinmods:blogimage, caption: ..., images: [{link: ..., description: ...}]}
func (e *Extension) blogImageSlides(ctx any) (any, error) {
	block, ok := ctx.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected image block, got %T", ctx)
	}
	caption, _ := block["caption"].(string)
	images, _ := block["images"].([]any)

	slides := make([]view.Slide, 0, len(images))
	for _, raw := range images {
		image, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		link, _ := image["link"].(string)
		description, _ := image["description"].(string)
		slides = append(slides, view.Slide{
			ImageURL:    e.images.From(link).ScaleWidth(1000).Crop(1000, 666).URL(),
			Title:       caption,
			Description: description,
		})
	}
	return slides, nil
}

func (e *Extension) authorCard(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	link, err := models.TransformAs[string](e.models, doc, "link")
	if err != nil {
		return nil, err
	}
	return view.Card{
		Link:        link,
		Title:       doc.String("name"),
		Description: doc.String("summary"),
		Image:       e.images.From(doc.String("image")).ScaleWidth(500).Crop(500, 400).URL(),
	}, nil
}

func authorLink(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	return "/blog/authors/" + doc.Name(), nil
}

func documentItem(key string) models.Transformer {
	return func(ctx any) (any, error) {
		doc, err := content.AsDocument(ctx)
		if err != nil {
			return nil, err
		}
		return doc.String(key), nil
	}
}

func noMetaTags(ctx any) (any, error) {
	return []view.MetaTag{}, nil
}

func constant(v any) models.Transformer {
	return func(ctx any) (any, error) { return v, nil }
}
