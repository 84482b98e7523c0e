package livereload

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
)

// Handler upgrades browser connections and attaches them to the hub.
type Handler struct {
	hub *Hub
}

// NewHandler creates a websocket handler for hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeWS handles GET /_livereload. It blocks until the browser goes away.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("Failed to upgrade live reload websocket", "error", err)
		return err
	}
	defer conn.CloseNow()

	ctx := c.Request().Context()
	sub, err := h.hub.Subscribe(ctx)
	if err != nil {
		return nil
	}
	defer func() {
		unsubCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.hub.Unsubscribe(unsubCtx, sub)
	}()

	// Browsers never send anything; CloseRead handles pings and reports the
	// disconnect through the returned context.
	readCtx := conn.CloseRead(ctx)

	for {
		select {
		case <-readCtx.Done():
			return nil
		case message, ok := <-sub.Send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return nil
			}
			if err := conn.Write(readCtx, websocket.MessageText, message); err != nil {
				slog.Debug("Live reload write failed", "error", err)
				return nil
			}
		}
	}
}
