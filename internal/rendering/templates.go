package rendering

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
)

// LayoutTemplate is executed for pages whose set defines it; other pages are
// executed on their own.
const LayoutTemplate = "base.html"

// Source picks the template file system: the embedded one when mode is
// "embed", otherwise dir on the site file system so edits are seen on reload.
func Source(mode string, site afero.Fs, dir string, embedded fs.FS) fs.FS {
	if mode == "embed" {
		slog.Info("Loading templates from embedded FS")
		return embedded
	}
	slog.Info("Loading templates from disk", "path", dir)
	return afero.NewIOFS(afero.NewBasePathFs(site, dir))
}

// Templates renders html/template pages. Every page under pages/ is parsed
// into its own set together with layouts/ and partials/, so pages can define
// the same blocks without clashing. A page's name is its path below pages/
// without the extension, e.g. "blogging/blog_landing".
type Templates struct {
	source fs.FS
	funcs  template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewTemplates creates a renderer over source. Call Load before rendering.
func NewTemplates(source fs.FS, funcs template.FuncMap) *Templates {
	return &Templates{source: source, funcs: funcs}
}

// Load parses all templates and swaps them in. On error the previous
// templates stay in use.
func (t *Templates) Load() error {
	shared, err := t.glob("layouts/*.html", "partials/*.html", "components/*.html")
	if err != nil {
		return err
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(t.source, "pages", func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(file) != ".html" {
			return nil
		}

		name := strings.TrimSuffix(strings.TrimPrefix(file, "pages/"), ".html")
		files := append(append([]string(nil), shared...), file)
		tmpl, err := template.New(path.Base(file)).Funcs(t.funcs).ParseFS(t.source, files...)
		if err != nil {
			return fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
		return nil
	})
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	// Partials can be rendered alone, e.g. for htmx fragments.
	partials, err := t.glob("partials/*.html")
	if err != nil {
		return err
	}
	for _, file := range partials {
		tmpl, err := template.New(path.Base(file)).Funcs(t.funcs).ParseFS(t.source, file)
		if err != nil {
			return fmt.Errorf("parse partial %s: %w", file, err)
		}
		pages[strings.TrimSuffix(file, ".html")] = tmpl
	}

	t.mu.Lock()
	t.pages = pages
	t.mu.Unlock()

	slog.Debug("Templates loaded", "count", len(pages))
	return nil
}

// Reload re-reads the templates. It is meant to be subscribed to the reload
// coordinator.
func (t *Templates) Reload(ctx context.Context) error {
	return t.Load()
}

func (t *Templates) glob(patterns ...string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := fs.Glob(t.source, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// Names returns the names of all renderable templates, sorted.
func (t *Templates) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.pages))
	for name := range t.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template to w.
func (t *Templates) Execute(w io.Writer, name string, data any) error {
	t.mu.RLock()
	tmpl, ok := t.pages[name]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	if tmpl.Lookup(LayoutTemplate) == nil {
		return tmpl.Execute(w, data)
	}
	return tmpl.ExecuteTemplate(w, LayoutTemplate, data)
}

// Render implements echo.Renderer.
func (t *Templates) Render(w io.Writer, name string, data any, c echo.Context) error {
	return t.Execute(w, name, data)
}
