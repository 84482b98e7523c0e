// Package navigation adds the site navigation bar to every page.
package navigation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

// TypeNavigation is the document type of navigation documents.
const TypeNavigation = "xinmods:navigation"

// DefaultDocument is the repository path of the main navigation.
const DefaultDocument = "/content/documents/navigation/main"

// Dependencies holds all the services that the extension requires.
type Dependencies struct {
	Store    content.Store
	Images   *imageurl.Builder
	Models   *models.Registry
	Document string // defaults to DefaultDocument
}

// Extension implements extension.Extension.
type Extension struct {
	store    content.Store
	images   *imageurl.Builder
	models   *models.Registry
	document string
}

// New creates the navigation extension.
func New(deps Dependencies) *Extension {
	doc := deps.Document
	if doc == "" {
		doc = DefaultDocument
	}
	return &Extension{
		store:    deps.Store,
		images:   deps.Images,
		models:   deps.Models,
		document: doc,
	}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "navigation"
}

// Register declares the navbar hook and transformer.
func (e *Extension) Register(r *extension.Registrar) error {
	r.Hook("view.common", e.navbarContext)
	r.Transform(TypeNavigation, "navbar", e.navbar)
	return nil
}

// navbarContext contributes "navbar" to every view. A site without a
// navigation document gets no navbar.
func (e *Extension) navbarContext(ctx context.Context, args ...any) (any, error) {
	doc, err := e.store.Get(ctx, e.document)
	if errors.Is(err, content.ErrNotFound) {
		slog.Debug("No navigation document", "path", e.document)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	navbar, err := e.models.Transform(doc, "navbar")
	if err != nil {
		return nil, err
	}
	return map[string]any{"navbar": navbar}, nil
}

func (e *Extension) navbar(ctx any) (any, error) {
	doc, err := content.AsDocument(ctx)
	if err != nil {
		return nil, err
	}
	return view.Navbar{
		ID:         doc.ID,
		Name:       doc.String("title"),
		Image:      e.images.From(doc.String("image")).ScaleHeight(80).URL(),
		Navigation: e.convertChildren(doc.List("children")),
	}, nil
}

func (e *Extension) convertChildren(children []any) []view.NavItem {
	items := make([]view.NavItem, 0, len(children))
	for _, raw := range children {
		child, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, e.convertChild(child))
	}
	return items
}

// convertChild turns a menu entry into a link, or into a dropdown when the
// entry has children of its own.
func (e *Extension) convertChild(child map[string]any) view.NavItem {
	label, _ := child["label"].(string)
	children, _ := child["children"].([]any)

	if len(children) == 0 {
		target, _ := child["link"].(string)
		return view.NavItem{Label: label, URL: e.resolveLink(target)}
	}

	return view.NavItem{
		ID:       Slug(label),
		Label:    label,
		Children: e.convertChildren(children),
	}
}

// resolveLink turns a link to a repository document into that document's
// "link" transform. Other links are used as they are. Unresolvable links
// become "#".
func (e *Extension) resolveLink(target string) string {
	if target == "" {
		return "#"
	}
	if !strings.HasPrefix(target, "/content/") {
		return target
	}

	doc, err := e.store.Get(context.Background(), target)
	if err != nil {
		slog.Debug("Navigation link target not found", "target", target, "error", err)
		return "#"
	}
	url, err := models.TransformAs[string](e.models, doc, "link")
	if err != nil || url == "" {
		return "#"
	}
	return url
}

// Slug lowercases label, drops accents and keeps only ASCII letters and digits.
func Slug(label string) string {
	// Chained transformers keep state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, label)
	if err != nil {
		folded = label
	}
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, folded)
}
