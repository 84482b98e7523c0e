package app

import (
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/config"
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
	"github.com/nfrund/headstart/internal/rendering"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "Headstart",
		ContentDir:    "site",
		TemplatesMode: "embed",
		ScriptsDir:    "scripts",
		ScriptTimeout: time.Second,
		ImageBase:     "/binaries",
		Features:      map[string]bool{},
	}
}

func TestContainer_InstallsExtensionsInOrder(t *testing.T) {
	i := NewContainer(testConfig(), afero.NewMemMapFs())

	host, err := do.Invoke[*extension.Host](i)
	require.NoError(t, err)

	var names []string
	for _, ext := range host.Extensions() {
		names = append(names, ext.Name())
	}
	assert.Equal(t, []string{"core", "navigation", "blogging", "products", "scripts"}, names)

	coordinator := do.MustInvoke[*reload.Coordinator](i)
	assert.Equal(t, []string{"content", "templates", "core", "navigation", "blogging", "products", "scripts"}, coordinator.Labels())

	assert.NotZero(t, do.MustInvoke[*hooks.Registry](i).Count())
	assert.NotEmpty(t, do.MustInvoke[*models.Registry](i).Keys())
}

func TestContainer_SharesRegistries(t *testing.T) {
	i := NewContainer(testConfig(), afero.NewMemMapFs())

	assert.Same(t, do.MustInvoke[*hooks.Registry](i), do.MustInvoke[*hooks.Registry](i))
	assert.Same(t, do.MustInvoke[*models.Registry](i), do.MustInvoke[*models.Registry](i))
}

func TestContainer_EmbeddedStaticFiles(t *testing.T) {
	i := NewContainer(testConfig(), afero.NewMemMapFs())

	static := do.MustInvokeNamed[afero.Fs](i, StaticFS)
	ok, err := afero.Exists(static, "css/site.css")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContainer_DiskTemplatesFromSite(t *testing.T) {
	site := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(site, "tpl/pages/home.html", []byte(`home of {{.appName}}`), 0o644))

	cfg := testConfig()
	cfg.TemplatesMode = "disk"
	cfg.TemplatesDir = "tpl"
	i := NewContainer(cfg, site)

	templates := do.MustInvoke[*rendering.Templates](i)
	assert.Equal(t, []string{"home"}, templates.Names())
}

func TestContainer_BrokenTemplatesFailHost(t *testing.T) {
	site := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(site, "tpl/pages/home.html", []byte(`{{if}}`), 0o644))

	cfg := testConfig()
	cfg.TemplatesMode = "disk"
	cfg.TemplatesDir = "tpl"

	_, err := do.Invoke[*extension.Host](NewContainer(cfg, site))
	assert.Error(t, err)
}
