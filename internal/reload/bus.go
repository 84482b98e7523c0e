package reload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nfrund/headstart/internal/pubsub"
)

// Bus topics.
const (
	TopicRequested = "system.reload.requested"
	TopicCompleted = "system.reload.completed"
)

type requestPayload struct {
	Reason string `json:"reason"`
}

// Bus connects the coordinator to the message bus. Reload requests from any
// source (file watcher, HTTP, signals) are published as messages and a single
// subscriber runs the cycles, so requests never race each other.
type Bus struct {
	coordinator *Coordinator
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber
	source      string
}

// NewBus creates a bus. source identifies this process in published messages.
func NewBus(coordinator *Coordinator, publisher pubsub.Publisher, subscriber pubsub.Subscriber, source string) *Bus {
	return &Bus{
		coordinator: coordinator,
		publisher:   publisher,
		subscriber:  subscriber,
		source:      source,
	}
}

// Start subscribes to reload requests and publishes a completion message with
// the cycle report after every reload.
func (b *Bus) Start(ctx context.Context) error {
	b.coordinator.Observe(func(ctx context.Context, report *Report) {
		payload, err := json.Marshal(report)
		if err != nil {
			slog.Error("Failed to encode reload report", "error", err)
			return
		}
		msg := pubsub.Message{
			Topic:   TopicCompleted,
			Source:  b.source,
			Payload: payload,
			Metadata: map[string]string{
				"reload_id": report.ID,
			},
		}
		if err := b.publisher.Publish(ctx, msg); err != nil {
			slog.Error("Failed to publish reload report", "reload_id", report.ID, "error", err)
		}
	})

	err := b.subscriber.Subscribe(ctx, TopicRequested, func(ctx context.Context, msg pubsub.Message) error {
		var req requestPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return fmt.Errorf("decode reload request: %w", err)
			}
		}
		reason := req.Reason
		if reason == "" {
			reason = "requested by " + msg.Source
		}
		b.coordinator.Trigger(ctx, reason)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicRequested, err)
	}
	return nil
}

// Request publishes a reload request.
func (b *Bus) Request(ctx context.Context, reason string) error {
	payload, err := json.Marshal(requestPayload{Reason: reason})
	if err != nil {
		return err
	}
	return b.publisher.Publish(ctx, pubsub.Message{
		Topic:   TopicRequested,
		Source:  b.source,
		Payload: payload,
	})
}
