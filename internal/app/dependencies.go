package app

import (
	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/content"
	"github.com/nfrund/headstart/internal/imageurl"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/script"
)

// Dependencies holds the core services that are required by the application's extensions.
// It is filled from the container and passed to NewExtensions.
type Dependencies struct {
	AppName      string
	Store        content.Store
	Images       *imageurl.Builder
	Models       *models.Registry
	ScriptsFS    afero.Fs
	ScriptsDir   string
	ScriptEngine *script.Engine
}
