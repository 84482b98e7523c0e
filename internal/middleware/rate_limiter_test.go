package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadRateLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/_reload", func(c echo.Context) error {
		return c.String(http.StatusAccepted, "queued")
	}, ReloadRateLimiter())

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/_reload", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows the burst", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.Equal(t, http.StatusAccepted, post("192.0.2.1:1234").Code, "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks requests exceeding the burst", func(t *testing.T) {
		rec := post("192.0.2.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Too many reload requests")
	})

	t.Run("other clients are unaffected", func(t *testing.T) {
		assert.Equal(t, http.StatusAccepted, post("192.0.2.2:1234").Code)
	})
}
