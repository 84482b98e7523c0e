package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/headstart/internal/middleware"
	"github.com/nfrund/headstart/internal/rendering"
)

// setupErrorHandling installs the HTTP error handler. Known HTTP errors keep
// their status; anything else is logged with a stack trace and answered with
// a 500. Browsers get an HTML page, everything else JSON.
func setupErrorHandling(e *echo.Echo) {
	components := rendering.NewComponents()

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
			if status >= http.StatusInternalServerError {
				middleware.FromContext(c.Request().Context()).Error("Internal Server Error",
					"status", status, "error", err)
			}
		} else {
			slog.Error("Internal Server Error (Unhandled)",
				"error", err.Error(),
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}

		var writeErr error
		switch {
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(status)
		case wantsHTML(c.Request()):
			writeErr = components.Page(c, status, errorPage(status, message))
		default:
			writeErr = c.JSON(status, map[string]any{"error": message})
		}
		if writeErr != nil {
			slog.Error("Failed to write error response", "status", status, "error", writeErr)
		}
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func errorPage(status int, message string) gomponents.Node {
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				TitleEl(gomponents.Text(title)),
			),
			Body(
				Main(
					Class("Error"),
					H1(gomponents.Text(title)),
					gomponents.If(message != http.StatusText(status), P(gomponents.Text(message))),
					A(Href("/"), gomponents.Text("Back to the start page")),
				),
			),
		),
	)
}
