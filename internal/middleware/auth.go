package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminCookie is the cookie the admin token may also be sent in, so the
// admin page works from a browser.
const AdminCookie = "admin_token"

// AdminAuth protects the admin and reload endpoints. The token is accepted as
// "Authorization: Bearer <token>" or in the admin_token cookie. An empty
// token disables the check, which is meant for local development only.
func AdminAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if token == "" {
			return next
		}
		return func(c echo.Context) error {
			given := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if given == "" {
				if cookie, err := c.Cookie(AdminCookie); err == nil {
					given = cookie.Value
				}
			}
			if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				FromContext(c.Request().Context()).Warn("Rejected admin request", "path", c.Request().URL.Path)
				return echo.NewHTTPError(http.StatusUnauthorized, "admin token required")
			}
			return next(c)
		}
	}
}

func bearer(header string) string {
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
