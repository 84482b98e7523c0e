// Package script runs transformers written in tengo. A manifest in the
// scripts directory binds each script to a (type, variant) key; the
// extension reads and compiles them on every reload so edited scripts take
// effect without a restart.
package script

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/extension"
	"github.com/nfrund/headstart/internal/models"
)

// Dependencies holds all the services that the extension requires.
type Dependencies struct {
	FS     afero.Fs
	Dir    string
	Engine *Engine
}

// Extension implements extension.Extension.
type Extension struct {
	fs     afero.Fs
	dir    string
	engine *Engine
}

// New creates the scripts extension.
func New(deps Dependencies) *Extension {
	engine := deps.Engine
	if engine == nil {
		engine = NewEngine(GetDefaultLimits())
	}
	return &Extension{fs: deps.FS, dir: deps.Dir, engine: engine}
}

// Name returns the extension's unique identifier.
func (e *Extension) Name() string {
	return "scripts"
}

// Register compiles every script in the manifest. A script that fails to
// load or compile fails the whole registration, so the transforms registered
// by the previous reload stay in place.
func (e *Extension) Register(r *extension.Registrar) error {
	scripts, err := LoadScripts(e.fs, e.dir)
	if err != nil {
		return err
	}

	for _, s := range scripts {
		compiled, err := e.engine.Compile(s)
		if err != nil {
			return err
		}
		r.Transform(s.Type, s.Variant, transformer(compiled))
	}

	slog.Info("Scripted transforms loaded", "dir", e.dir, "count", len(scripts))
	return nil
}

// transformer adapts a compiled script to models.Transformer. Transformers
// take no context, so a canceled request does not stop a running script; the
// engine's MaxExecutionTime is what bounds it.
func transformer(c *Compiled) models.Transformer {
	return func(ctx any) (any, error) {
		return c.Run(context.Background(), ctx)
	}
}
