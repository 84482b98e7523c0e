// Package extension installs site extensions into the hook and transform
// registries and keeps them current across reloads.
package extension

import (
	"github.com/labstack/echo/v4"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/view"
)

// Extension defines the contract for a self-contained site feature.
type Extension interface {
	// Name returns a unique identifier. It owns every registration the
	// extension makes.
	Name() string

	// Register declares the extension's hooks and transformers. It is called
	// once at install time and again on every reload, so it must only register.
	Register(r *Registrar) error
}

// Router is implemented by extensions that serve pages. Routes are mounted
// once at boot and are not affected by reloads.
type Router interface {
	Routes(g *echo.Group, v *view.Endpoints)
}

// Registrar stages the registrations of one extension. The host applies them
// to the registries in one step after Register returns.
type Registrar struct {
	owner      string
	hooks      []hooks.Registration
	transforms []models.Registration
}

func newRegistrar(owner string) *Registrar {
	return &Registrar{owner: owner}
}

// Owner returns the name of the extension being registered.
func (r *Registrar) Owner() string {
	return r.owner
}

// Hook registers handler under topic. Pass hooks.Override() to replace every
// handler stored under the exact topic.
func (r *Registrar) Hook(topic string, handler hooks.Handler, opts ...hooks.RegisterOption) {
	r.hooks = append(r.hooks, hooks.NewRegistration(topic, handler, opts...))
}

// Transform registers fn for (modelType, variant).
func (r *Registrar) Transform(modelType, variant string, fn models.Transformer, opts ...models.RegisterOption) {
	r.transforms = append(r.transforms, models.NewRegistration(modelType, variant, fn, opts...))
}

// Transforms registers every variant in fns for modelType.
func (r *Registrar) Transforms(modelType string, fns map[string]models.Transformer, opts ...models.RegisterOption) {
	for variant, fn := range fns {
		r.Transform(modelType, variant, fn, opts...)
	}
}
