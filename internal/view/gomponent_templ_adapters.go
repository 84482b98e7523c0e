package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// templNode wraps a templ.Component so it can be a child of a gomponents tree.
type templNode struct {
	component templ.Component
}

// Render implements gomponents.Node. gomponents does not pass a context, so
// the component renders with context.Background().
func (n templNode) Render(w io.Writer) error {
	return n.component.Render(context.Background(), w)
}

// AdaptTemplToGomponent converts a templ.Component into a gomponents.Node.
func AdaptTemplToGomponent(component templ.Component) gomponents.Node {
	return templNode{component: component}
}
