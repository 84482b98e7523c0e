package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeAllAsMap_MergesPrefixMatches(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x.one", returning(map[string]any{"a": 1}))
	reg.Register("x.two", returning(map[string]any{"b": 2}))

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)
}

func TestInvokeAllAsMap_SkipsEmptyResults(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x.nil", returning(nil))
	reg.Register("x.false", returning(false))
	reg.Register("x.empty", returning(map[string]any{}))
	reg.Register("x.string", returning(""))
	reg.Register("x.value", returning(map[string]any{"kept": true}))

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kept": true}, got)
}

func TestInvokeAllAsMap_LaterResultWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register("view.common", returning(map[string]any{"title": "common", "a": 1}))
	reg.Register("view.page", returning(map[string]any{"title": "page"}))

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"view"})
	require.NoError(t, err)
	assert.Equal(t, "page", got["title"])
	assert.Equal(t, 1, got["a"])
}

type metaKey string

func TestInvokeAllAsMap_MergesTypedMaps(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x.strings", returning(map[string]string{"title": "Home"}))
	reg.Register("x.named", returning(map[metaKey]int{"count": 3}))
	reg.Register("x.struct", returning(struct{ Title string }{"ignored"}))
	reg.Register("x.intkeys", returning(map[int]string{1: "ignored"}))

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Home", "count": 3}, got)
}

func TestInvokeAllAsMap_DeferredResolvesAfterSync(t *testing.T) {
	reg := NewRegistry()
	// Registered first but deferred: it resolves in the second batch and wins the collision.
	reg.Register("view.a", Async(returning(map[string]any{"title": "deferred"})))
	reg.Register("view.b", returning(map[string]any{"title": "sync"}))

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"view"})
	require.NoError(t, err)
	assert.Equal(t, "deferred", got["title"])
}

func TestInvokeAll_PassesArguments(t *testing.T) {
	reg := NewRegistry()
	reg.Register("args", func(ctx context.Context, args ...any) (any, error) {
		return args, nil
	})

	got, err := reg.InvokeAll(context.Background(), []string{"args"}, "req", 42)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []any{"req", 42}, got[0])
}

func TestInvokeAll_SyncBatchPrecedesDeferredBatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("t.1", Async(returning("d1")))
	reg.Register("t.2", returning("s1"))
	reg.Register("t.3", Async(returning("d2")))
	reg.Register("t.4", returning("s2"))

	got, err := reg.InvokeAll(context.Background(), []string{"t"})
	require.NoError(t, err)

	// Registration order is d1 s1 d2 s2; the result order is the sync batch then the deferred batch.
	assert.Equal(t, []any{"s1", "s2", "d1", "d2"}, got)
}

func TestInvokeAll_RepeatedCallsYieldSameMultiset(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			delay := time.Duration(10-i) * time.Millisecond
			v := i
			reg.Register("m.topic", Async(func(ctx context.Context, args ...any) (any, error) {
				time.Sleep(delay)
				return v, nil
			}))
			continue
		}
		reg.Register("m.topic", returning(i))
	}

	first, err := reg.InvokeAll(context.Background(), []string{"m"})
	require.NoError(t, err)
	second, err := reg.InvokeAll(context.Background(), []string{"m"})
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
	assert.Len(t, first, 10)
	// Positions may differ from registration order, but sync results always lead.
	assert.Equal(t, []any{1, 3, 5, 7, 9}, first[:5])
	assert.ElementsMatch(t, []any{0, 2, 4, 6, 8}, first[5:])
}

func TestInvokeAll_DeferredHandlersRunConcurrently(t *testing.T) {
	reg := NewRegistry()
	var arrived sync.WaitGroup
	arrived.Add(2)
	barrier := make(chan struct{})
	go func() {
		arrived.Wait()
		close(barrier)
	}()

	waiter := func(ctx context.Context, args ...any) (any, error) {
		arrived.Done()
		select {
		case <-barrier:
			return "ok", nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("deferred handlers were not run concurrently")
		}
	}
	reg.Register("c.one", Async(waiter))
	reg.Register("c.two", Async(waiter))

	got, err := reg.InvokeAll(context.Background(), []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, []any{"ok", "ok"}, got)
}

func TestInvokeAll_SyncErrorAbortsCall(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	var laterCalled atomic.Bool

	reg.Register("f.1", returning(map[string]any{"a": 1}))
	reg.Register("f.2", func(ctx context.Context, args ...any) (any, error) {
		return nil, boom
	})
	reg.Register("f.3", func(ctx context.Context, args ...any) (any, error) {
		laterCalled.Store(true)
		return map[string]any{"c": 3}, nil
	})

	got, err := reg.InvokeAllAsMap(context.Background(), []string{"f"})
	assert.Nil(t, got)
	assert.Same(t, boom, err)
	assert.False(t, laterCalled.Load())
}

func TestInvokeAll_DeferredErrorAbortsCall(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("deferred boom")

	reg.Register("f.ok", returning(map[string]any{"a": 1}))
	reg.Register("f.bad", Async(func(ctx context.Context, args ...any) (any, error) {
		return nil, boom
	}))

	got, err := reg.InvokeAll(context.Background(), []string{"f"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	assert.Same(t, boom, err)
}

func TestInvokeAll_PanicBecomesError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("p.sync", func(ctx context.Context, args ...any) (any, error) {
		panic("sync panic")
	})

	_, err := reg.InvokeAll(context.Background(), []string{"p"})
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "sync panic", pe.Value)

	reg.Clear("p.sync")
	reg.Register("p.deferred", Async(func(ctx context.Context, args ...any) (any, error) {
		panic("deferred panic")
	}))

	_, err = reg.InvokeAll(context.Background(), []string{"p"})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "deferred panic", pe.Value)
}

func TestInvokeAll_NoMatchesReturnsEmpty(t *testing.T) {
	reg := NewRegistry()
	got, err := reg.InvokeAll(context.Background(), []string{"nothing"})
	require.NoError(t, err)
	assert.Empty(t, got)

	m, err := reg.InvokeAllAsMap(context.Background(), []string{"nothing"})
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestIsEmpty(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *struct{}

	testCases := []struct {
		name  string
		value any
		empty bool
	}{
		{"nil", nil, true},
		{"false", false, true},
		{"true", true, false},
		{"zero", 0, true},
		{"number", 3, false},
		{"empty string", "", true},
		{"string", "x", false},
		{"nil map", nilMap, true},
		{"empty map", map[string]any{}, true},
		{"map", map[string]any{"a": 1}, false},
		{"nil pointer", nilPtr, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.empty, isEmpty(tc.value))
		})
	}
}
