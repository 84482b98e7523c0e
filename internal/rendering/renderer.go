package rendering

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Components renders Go-built pages (templ components and gomponents nodes)
// used outside the template tree: the admin page and the error page.
type Components struct{}

// NewComponents creates a component renderer.
func NewComponents() *Components {
	return &Components{}
}

// gomponentNode matches gomponents.Node without importing it here.
type gomponentNode interface {
	Render(w io.Writer) error
}

func (r *Components) render(ctx context.Context, component any, w io.Writer) error {
	switch c := component.(type) {
	case templ.Component:
		return c.Render(ctx, w)
	case gomponentNode:
		return c.Render(w)
	default:
		return fmt.Errorf("unsupported component type: %T", component)
	}
}

// Bytes renders a component into memory, e.g. for htmx fragments.
func (r *Components) Bytes(ctx context.Context, component any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.render(ctx, component, &buf); err != nil {
		return nil, fmt.Errorf("failed to render component: %w", err)
	}
	return buf.Bytes(), nil
}

// Page writes a component as the HTML response. Nothing is written if the
// component fails to render.
func (r *Components) Page(c echo.Context, status int, component any) error {
	body, err := r.Bytes(c.Request().Context(), component)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, body)
}
