package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/nfrund/headstart/internal/content"
)

// Scripts read their input from the "doc" variable and write their output to
// "result".
const (
	inputVar  = "doc"
	resultVar = "result"
)

// Engine compiles tengo scripts under a fixed set of limits.
type Engine struct {
	limits Limits
}

// NewEngine creates an engine. Zero limits fall back to DefaultLimits.
func NewEngine(limits Limits) *Engine {
	if limits.MaxExecutionTime <= 0 {
		limits.MaxExecutionTime = DefaultLimits.MaxExecutionTime
	}
	if limits.AllowedModules == nil {
		limits.AllowedModules = GetDefaultLimits().AllowedModules
	}
	return &Engine{limits: limits}
}

// Limits returns the engine's limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Compiled is a compiled script ready to run. It is safe for concurrent use;
// every run works on its own clone.
type Compiled struct {
	script   *Script
	compiled *tengo.Compiled
	timeout  time.Duration
}

// Compile parses and compiles a script. Syntax errors and imports of modules
// outside the allowed set are reported here.
func (e *Engine) Compile(s *Script) (*Compiled, error) {
	startTime := time.Now()

	ts := tengo.NewScript([]byte(s.Content))
	ts.SetImports(stdlib.GetModuleMap(e.limits.AllowedModules...))
	if e.limits.MaxAllocs > 0 {
		ts.SetMaxAllocs(e.limits.MaxAllocs)
	}

	// Declared up front so the compiler resolves them; values are set per run.
	if err := ts.Add(inputVar, nil); err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, s.Name(), "failed to declare input", err)
	}
	if err := ts.Add("log", logFunction(s)); err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, s.Name(), "failed to add logging function", err)
	}

	compiled, err := ts.Compile()
	if err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, s.Name(), "failed to compile script", err)
	}

	slog.Debug("Tengo script compiled",
		"script", s.Name(),
		"compilation_time", time.Since(startTime),
	)

	return &Compiled{script: s, compiled: compiled, timeout: e.limits.MaxExecutionTime}, nil
}

// Script returns the source the script was compiled from.
func (c *Compiled) Script() *Script {
	return c.script
}

// Run executes the script with input bound to "doc" and returns the value
// the script assigned to "result", or nil if it assigned none.
func (c *Compiled) Run(ctx context.Context, input any) (any, error) {
	name := c.script.Name()

	value, err := toScriptValue(input)
	if err != nil {
		return nil, NewScriptError(ErrorTypeExecution, name, "failed to convert input", err)
	}

	run := c.compiled.Clone()
	if err := run.Set(inputVar, value); err != nil {
		return nil, NewScriptError(ErrorTypeExecution, name, "failed to set input", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := run.RunContext(execCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewScriptError(ErrorTypeTimeout, name, "script execution timed out", err)
		}
		return nil, NewScriptError(ErrorTypeExecution, name, "script execution failed", err)
	}

	return run.Get(resultVar).Value(), nil
}

// logFunction exposes slog to scripts as log(args...).
func logFunction(s *Script) *tengo.UserFunction {
	return &tengo.UserFunction{
		Name: "log",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) == 0 {
				return nil, tengo.ErrWrongNumArguments
			}
			parts := make([]string, 0, len(args))
			for _, arg := range args {
				if str, ok := tengo.ToString(arg); ok {
					parts = append(parts, str)
				} else {
					parts = append(parts, arg.String())
				}
			}
			slog.Info("Script log", "message", strings.Join(parts, " "), "script", s.Name())
			return tengo.UndefinedValue, nil
		},
	}
}

// toScriptValue converts Go values into the subset tengo.FromInterface
// accepts. Documents become maps with their items under "items".
func toScriptValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int64, float64, time.Time:
		return val, nil
	case int32:
		return int64(val), nil
	case uint:
		return int64(val), nil
	case float32:
		return float64(val), nil
	case *content.Document:
		if val == nil {
			return nil, nil
		}
		items, err := toScriptValue(val.Items)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"id":        val.ID,
			"type":      val.Type,
			"path":      val.Path,
			"name":      val.Name(),
			"published": val.PublishedAt,
			"items":     items,
		}, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			converted, err := toScriptValue(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			converted, err := toScriptValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	}

	// Structs and other values go through their JSON form.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
