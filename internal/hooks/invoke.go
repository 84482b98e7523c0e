package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// PanicError is returned when a handler panics instead of returning an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("hook handler panicked: %v", e.Value)
}

// InvokeAll calls every handler whose topic starts with one of topics.
//
// Synchronous results are collected first, in the order returned by Find.
// Deferred results are then awaited concurrently and appended, also in Find
// order. The combined slice therefore does not follow registration order when
// synchronous and deferred handlers are interleaved.
//
// The first error aborts the call and is returned as is.
func (r *Registry) InvokeAll(ctx context.Context, topics []string, args ...any) ([]any, error) {
	start := time.Now()
	defer func() {
		invokeDuration.Observe(time.Since(start).Seconds())
	}()

	entries := r.find(topics, true)
	results := make([]any, 0, len(entries))
	var pending []Deferred

	for _, e := range entries {
		res, err := callHandler(ctx, e.handler, args)
		handlerInvocations.WithLabelValues("sync").Inc()
		if err != nil {
			handlerFailures.WithLabelValues("sync").Inc()
			return nil, err
		}
		if d, ok := res.(Deferred); ok && d != nil {
			pending = append(pending, d)
			continue
		}
		results = append(results, res)
	}

	if len(pending) == 0 {
		return results, nil
	}

	deferred := make([]any, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range pending {
		g.Go(func() error {
			res, err := callDeferred(gctx, d)
			handlerInvocations.WithLabelValues("deferred").Inc()
			if err != nil {
				handlerFailures.WithLabelValues("deferred").Inc()
				return err
			}
			deferred[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(results, deferred...), nil
}

// InvokeAllAsMap runs InvokeAll and shallow-merges every result that is a map
// with string keys into a single map. Empty results (nil, false, zero values,
// empty maps) are skipped and on key collisions the later result wins.
func (r *Registry) InvokeAllAsMap(ctx context.Context, topics []string, args ...any) (map[string]any, error) {
	results, err := r.InvokeAll(ctx, topics, args...)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any)
	for _, res := range results {
		if isEmpty(res) {
			continue
		}
		if !mergeInto(merged, res) {
			slog.Warn("Skipping hook result that is not a map with string keys", "topics", topics, "type", fmt.Sprintf("%T", res))
		}
	}
	return merged, nil
}

// mergeInto copies the entries of res into dst when res is a map keyed by a
// string type.
func mergeInto(dst map[string]any, res any) bool {
	if m, ok := res.(map[string]any); ok {
		for k, v := range m {
			dst[k] = v
		}
		return true
	}

	rv := reflect.ValueOf(res)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return false
	}
	iter := rv.MapRange()
	for iter.Next() {
		dst[iter.Key().String()] = iter.Value().Interface()
	}
	return true
}

func callHandler(ctx context.Context, h Handler, args []any) (res any, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return h(ctx, args...)
}

func callDeferred(ctx context.Context, d Deferred) (res any, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return d(ctx)
}

// isEmpty reports whether v counts as "no result".
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
