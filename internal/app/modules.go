package app

import (
	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/extensions/blogging"
	"github.com/nfrund/headstart/internal/extensions/core"
	"github.com/nfrund/headstart/internal/extensions/navigation"
	"github.com/nfrund/headstart/internal/extensions/products"
	"github.com/nfrund/headstart/internal/script"
)

// NewExtensions creates and returns the list of all active extensions. They
// are installed, rebuilt on reload and mounted in this order.
func NewExtensions(deps Dependencies) []extension.Extension {

	return []extension.Extension{
		// Add new extensions here.
		core.New(core.Dependencies{
			AppName: deps.AppName,
		}),
		navigation.New(navigation.Dependencies{
			Store:  deps.Store,
			Images: deps.Images,
			Models: deps.Models,
		}),
		blogging.New(blogging.Dependencies{
			Store:  deps.Store,
			Images: deps.Images,
			Models: deps.Models,
		}),
		products.New(products.Dependencies{
			Store:  deps.Store,
			Images: deps.Images,
			Models: deps.Models,
		}),
		script.New(script.Dependencies{
			FS:     deps.ScriptsFS,
			Dir:    deps.ScriptsDir,
			Engine: deps.ScriptEngine,
		}),
	}
}
