package view

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// Card is the presentation of a document in a list or grid.
type Card struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Image       string `json:"image"`
}

// Slide is one image of a carousel.
type Slide struct {
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// MetaTag is rendered as <meta name="..." content="...">.
type MetaTag struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Navbar is the site navigation.
type Navbar struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Image      string    `json:"image,omitempty"`
	Navigation []NavItem `json:"navigation"`
}

// NavItem is either a link (URL set) or a dropdown (ID and Children set).
type NavItem struct {
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label"`
	URL      string    `json:"url,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// RequestContext returns the echo.Context that view endpoints pass as the
// first hook argument.
func RequestContext(args []any) (echo.Context, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("hook called without a request context")
	}
	c, ok := args[0].(echo.Context)
	if !ok {
		return nil, fmt.Errorf("hook called with %T, want echo.Context", args[0])
	}
	return c, nil
}
