package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge(false)
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "system.reload.requested", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:    "system.reload.requested",
		Source:   "watcher",
		Payload:  []byte(`{"reason":"file changed"}`),
		Metadata: map[string]string{"path": "content/blog.yaml"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "system.reload.requested", msg.Topic)
		assert.Equal(t, "watcher", msg.Source)
		assert.JSONEq(t, `{"reason":"file changed"}`, string(msg.Payload))
		assert.Equal(t, "content/blog.yaml", msg.Metadata["path"])
		assert.NotContains(t, msg.Metadata, metaKeySource)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestWatermillBridge_HandlerErrorDoesNotRedeliver(t *testing.T) {
	bridge := NewWatermillBridge(false)
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	err := bridge.Subscribe(ctx, "t", func(ctx context.Context, msg Message) error {
		calls <- struct{}{}
		return errors.New("handler failed")
	})
	require.NoError(t, err)
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "t"}))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	select {
	case <-calls:
		t.Fatal("failed message was delivered twice")
	case <-time.After(100 * time.Millisecond):
	}
}
