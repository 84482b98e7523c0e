// Package livereload tells connected browsers to refresh after a successful
// reload cycle.
package livereload

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/headstart/internal/reload"
)

// MessageReload is sent to every browser after a successful reload.
const MessageReload = "reload"

// Subscriber is one connected browser. The hub closes Send when it drops the
// subscriber.
type Subscriber struct {
	Send chan []byte
}

// Hub keeps the set of connected browsers and broadcasts to them. All state
// is owned by the Run loop.
type Hub struct {
	subscribers map[*Subscriber]bool

	broadcast  chan []byte
	register   chan *Subscriber
	unregister chan *Subscriber
	count      chan chan int
}

// NewHub creates a hub. Run must be started before it is used.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		count:       make(chan chan int),
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for s := range h.subscribers {
				close(s.Send)
				delete(h.subscribers, s)
			}
			return

		case s := <-h.register:
			h.subscribers[s] = true
			slog.Debug("Live reload client connected", "total_subscribers", len(h.subscribers))

		case s := <-h.unregister:
			if h.subscribers[s] {
				delete(h.subscribers, s)
				close(s.Send)
				slog.Debug("Live reload client disconnected", "total_subscribers", len(h.subscribers))
			}

		case message := <-h.broadcast:
			for s := range h.subscribers {
				select {
				case s.Send <- message:
				default:
					// Slow clients are dropped; they reconnect on their own.
					close(s.Send)
					delete(h.subscribers, s)
					slog.Warn("Dropping slow live reload client", "total_subscribers", len(h.subscribers))
				}
			}

		case reply := <-h.count:
			reply <- len(h.subscribers)
		}
	}
}

// Subscribe registers a new subscriber with a buffered channel.
func (h *Hub) Subscribe(ctx context.Context) (*Subscriber, error) {
	s := &Subscriber{Send: make(chan []byte, 8)}
	select {
	case h.register <- s:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe removes s. Unknown subscribers are ignored.
func (h *Hub) Unsubscribe(ctx context.Context, s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-ctx.Done():
	}
}

// Broadcast sends message to every subscriber.
func (h *Hub) Broadcast(ctx context.Context, message []byte) error {
	select {
	case h.broadcast <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// broadcastTimeout bounds how long a reload cycle waits for the hub.
const broadcastTimeout = time.Second

// Observer returns a reload observer that refreshes browsers after every
// successful cycle.
func (h *Hub) Observer() reload.Observer {
	return func(ctx context.Context, report *reload.Report) {
		if !report.OK() {
			slog.Debug("Skipping live reload after failed cycle", "reload_id", report.ID)
			return
		}
		ctx, cancel := context.WithTimeout(ctx, broadcastTimeout)
		defer cancel()
		if err := h.Broadcast(ctx, []byte(MessageReload)); err != nil {
			slog.Warn("Failed to broadcast live reload", "error", err)
		}
	}
}
