package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/config"
	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/livereload"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/pubsub"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/rendering"
	"github.com/nfrund/headstart/internal/script"
	"github.com/nfrund/headstart/internal/view"
	"github.com/nfrund/headstart/web"
)

// Names of services registered under an interface type.
const (
	SiteFS   = "fs.site"
	StaticFS = "fs.static"
)

// NewContainer registers every core service. site is the file system content
// and scripts are read from; production passes afero.NewOsFs().
func NewContainer(cfg *config.Config, site afero.Fs) do.Injector {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideNamedValue(i, SiteFS, site)
	do.ProvideNamed(i, StaticFS, func(i do.Injector) (afero.Fs, error) {
		if cfg.TemplatesMode == "embed" && cfg.StaticDir == "" {
			return afero.FromIOFS{FS: web.Static()}, nil
		}
		dir := cfg.StaticDir
		if dir == "" {
			dir = filepath.Join("web", "static")
		}
		return afero.NewReadOnlyFs(afero.NewBasePathFs(site, dir)), nil
	})

	do.Provide(i, func(i do.Injector) (*hooks.Registry, error) {
		return hooks.NewRegistry(), nil
	})
	do.Provide(i, func(i do.Injector) (*models.Registry, error) {
		return models.NewRegistry(), nil
	})
	do.Provide(i, func(i do.Injector) (*reload.Coordinator, error) {
		return reload.NewCoordinator(), nil
	})
	do.Provide(i, func(i do.Injector) (*content.FileStore, error) {
		return content.NewFileStore(do.MustInvokeNamed[afero.Fs](i, SiteFS), cfg.ContentDir), nil
	})
	do.Provide(i, func(i do.Injector) (*imageurl.Builder, error) {
		return imageurl.NewBuilder(cfg.ImageBase), nil
	})
	do.Provide(i, func(i do.Injector) (*script.Engine, error) {
		limits := script.GetDefaultLimits()
		limits.MaxExecutionTime = cfg.ScriptTimeout
		return script.NewEngine(limits), nil
	})

	do.Provide(i, func(i do.Injector) (*pubsub.WatermillBridge, error) {
		return pubsub.NewWatermillBridge(cfg.Debug), nil
	})
	do.Provide(i, func(i do.Injector) (*reload.Bus, error) {
		bridge := do.MustInvoke[*pubsub.WatermillBridge](i)
		return reload.NewBus(do.MustInvoke[*reload.Coordinator](i), bridge, bridge, cfg.AppName), nil
	})

	do.Provide(i, func(i do.Injector) (*rendering.Templates, error) {
		funcs := rendering.Funcs(rendering.FuncDeps{
			Models:   do.MustInvoke[*models.Registry](i),
			Features: cfg.Features,
			Files:    do.MustInvokeNamed[afero.Fs](i, StaticFS),
		})
		templates := rendering.NewTemplates(rendering.Source(cfg.TemplatesMode, site, cfg.TemplatesDir, web.Templates()), funcs)
		if err := templates.Load(); err != nil {
			return nil, err
		}
		return templates, nil
	})
	do.Provide(i, func(i do.Injector) (*rendering.Components, error) {
		return rendering.NewComponents(), nil
	})
	do.Provide(i, func(i do.Injector) (*livereload.Hub, error) {
		return livereload.NewHub(), nil
	})
	do.Provide(i, func(i do.Injector) (*view.Endpoints, error) {
		return view.NewEndpoints(do.MustInvoke[*hooks.Registry](i)), nil
	})

	do.Provide(i, newHost)
	return i
}

// newHost subscribes the content cache and templates to reloads, then
// installs every extension. Reload callbacks run in this order, so
// extensions always rebuild against fresh content and templates.
func newHost(i do.Injector) (*extension.Host, error) {
	cfg := do.MustInvoke[*config.Config](i)
	coordinator := do.MustInvoke[*reload.Coordinator](i)
	store := do.MustInvoke[*content.FileStore](i)
	templates, err := do.Invoke[*rendering.Templates](i)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	coordinator.OnReload("content", func(ctx context.Context) error {
		store.Invalidate()
		return nil
	})
	coordinator.OnReload("templates", templates.Reload)

	modelRegistry := do.MustInvoke[*models.Registry](i)
	host := extension.NewHost(do.MustInvoke[*hooks.Registry](i), modelRegistry, coordinator)

	extensions := NewExtensions(Dependencies{
		AppName:      cfg.AppName,
		Store:        store,
		Images:       do.MustInvoke[*imageurl.Builder](i),
		Models:       modelRegistry,
		ScriptsFS:    do.MustInvokeNamed[afero.Fs](i, SiteFS),
		ScriptsDir:   cfg.ScriptsDir,
		ScriptEngine: do.MustInvoke[*script.Engine](i),
	})
	for _, ext := range extensions {
		if err := host.Install(ext); err != nil {
			return nil, err
		}
	}
	return host, nil
}
