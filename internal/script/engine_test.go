package script

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/content"
)

func compile(t *testing.T, engine *Engine, src string) *Compiled {
	t.Helper()
	compiled, err := engine.Compile(&Script{Type: "test", Variant: "card", Path: "test.tengo", Content: src})
	require.NoError(t, err)
	return compiled
}

func TestEngine_RunDocument(t *testing.T) {
	engine := NewEngine(GetDefaultLimits())
	compiled := compile(t, engine, `
text := import("text")
log("building card for", doc.path)
result := {
	title: text.to_upper(doc.items.title),
	tags: len(doc.items.tags),
	name: doc.name
}
`)

	doc := &content.Document{
		Type: "xinmods:product",
		Path: "/content/documents/product/kettle",
		Items: map[string]any{
			"title": "Kettle",
			"tags":  []string{"kitchen", "steel"},
		},
	}

	out, err := compiled.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "KETTLE",
		"tags":  int64(2),
		"name":  "kettle",
	}, out)
}

func TestEngine_NoResult(t *testing.T) {
	compiled := compile(t, NewEngine(Limits{}), `x := 1`)

	out, err := compiled.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEngine_CompileErrors(t *testing.T) {
	engine := NewEngine(GetDefaultLimits())

	tests := map[string]string{
		"syntax":            `result := {`,
		"disallowed module": `os := import("os"); result := os.getenv("HOME")`,
		"undefined name":    `result := missing + 1`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := engine.Compile(&Script{Type: "t", Variant: "v", Path: "bad.tengo", Content: src})
			require.Error(t, err)

			var scriptErr *ScriptError
			require.True(t, errors.As(err, &scriptErr))
			assert.Equal(t, ErrorTypeCompilation, scriptErr.Type)
			assert.Contains(t, err.Error(), "bad.tengo")
		})
	}
}

func TestEngine_RuntimeError(t *testing.T) {
	compiled := compile(t, NewEngine(GetDefaultLimits()), `result := doc.count / 0`)

	_, err := compiled.Run(context.Background(), map[string]any{"count": 4})
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, ErrorTypeExecution, scriptErr.Type)
}

func TestEngine_Timeout(t *testing.T) {
	limits := GetDefaultLimits()
	limits.MaxExecutionTime = 50 * time.Millisecond
	compiled := compile(t, NewEngine(limits), `for { }`)

	start := time.Now()
	_, err := compiled.Run(context.Background(), nil)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, ErrorTypeTimeout, scriptErr.Type)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEngine_ConcurrentRuns(t *testing.T) {
	compiled := compile(t, NewEngine(GetDefaultLimits()), `result := doc.n * 2`)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out, err := compiled.Run(context.Background(), map[string]any{"n": n})
			assert.NoError(t, err)
			assert.Equal(t, int64(n*2), out)
		}(i)
	}
	wg.Wait()
}

func TestToScriptValue_Structs(t *testing.T) {
	type card struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	out, err := toScriptValue(card{Title: "Kettle", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Kettle", "tags": []any{"a"}}, out)
}
