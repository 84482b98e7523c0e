// Package reload coordinates rebuilding the extension registries at runtime.
//
// Components that own registry state subscribe a rebuild callback with
// OnReload. Trigger replays every callback in subscription order. Unlike hook
// invocation, a failing callback does not stop the cycle: the failure is
// logged, recorded in the Report and the next callback runs.
package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Callback rebuilds one slice of registry state. It must be idempotent: running
// it N times must leave the registries as running it once would.
type Callback func(ctx context.Context) error

type subscription struct {
	label    string
	callback Callback
}

// Failure records one callback that failed during a cycle.
type Failure struct {
	Label string `json:"label"`
	Error string `json:"error"`
	err   error
}

// Report summarizes one reload cycle.
type Report struct {
	ID        string        `json:"id"`
	Reason    string        `json:"reason"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Ran       int           `json:"ran"`
	Failures  []Failure     `json:"failures,omitempty"`
}

// OK reports whether every callback succeeded.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// Err joins the errors of all failed callbacks, or returns nil.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Label, f.err))
	}
	return errors.Join(errs...)
}

// Observer is notified after every completed cycle.
type Observer func(ctx context.Context, report *Report)

// Coordinator holds the rebuild callbacks for the lifetime of the process.
type Coordinator struct {
	mu        sync.Mutex
	subs      []subscription
	observers []Observer
	last      *Report

	// running serializes cycles so two triggers never interleave callbacks.
	running sync.Mutex
}

// NewCoordinator creates a coordinator with no subscriptions.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// OnReload subscribes callback under label. Subscriptions are never removed.
func (c *Coordinator) OnReload(label string, callback Callback) {
	if callback == nil {
		slog.Warn("Ignoring nil reload callback", "label", label)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = append(c.subs, subscription{label: label, callback: callback})
	slog.Debug("Registered reload callback", "label", label, "total", len(c.subs))
}

// Observe registers fn to be called after each cycle.
func (c *Coordinator) Observe(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers = append(c.observers, fn)
}

// Labels returns the labels of all subscriptions in order.
func (c *Coordinator) Labels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	labels := make([]string, len(c.subs))
	for i, s := range c.subs {
		labels[i] = s.label
	}
	return labels
}

// Last returns the report of the most recent cycle, or nil.
func (c *Coordinator) Last() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

// Trigger runs every subscribed callback once, in subscription order.
func (c *Coordinator) Trigger(ctx context.Context, reason string) *Report {
	c.running.Lock()
	defer c.running.Unlock()

	c.mu.Lock()
	subs := append([]subscription(nil), c.subs...)
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	report := &Report{
		ID:        uuid.NewString(),
		Reason:    reason,
		StartedAt: time.Now(),
	}
	logger := slog.With("reload_id", report.ID)
	logger.Info("Reloading", "reason", reason, "callbacks", len(subs))

	for _, s := range subs {
		report.Ran++
		if err := runCallback(ctx, s.callback); err != nil {
			callbackFailures.WithLabelValues(s.label).Inc()
			logger.Error("Reload callback failed", "label", s.label, "error", err)
			report.Failures = append(report.Failures, Failure{Label: s.label, Error: err.Error(), err: err})
			continue
		}
		logger.Debug("Reload callback finished", "label", s.label)
	}

	report.Duration = time.Since(report.StartedAt)
	cycles.WithLabelValues(outcome(report)).Inc()
	cycleDuration.Observe(report.Duration.Seconds())
	logger.Info("Reload finished", "duration", report.Duration, "failures", len(report.Failures))

	c.mu.Lock()
	c.last = report
	c.mu.Unlock()

	for _, observe := range observers {
		observe(ctx, report)
	}
	return report
}

func runCallback(ctx context.Context, cb Callback) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("reload callback panicked: %v\n%s", v, debug.Stack())
		}
	}()
	return cb(ctx)
}

func outcome(r *Report) string {
	if r.OK() {
		return "ok"
	}
	return "partial"
}
