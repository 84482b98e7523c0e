package rendering

import (
	"encoding/json"
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/spf13/afero"

	"github.com/nfrund/headstart/internal/models"
)

// FuncDeps holds what the template helpers read from.
type FuncDeps struct {
	Models   *models.Registry
	Features map[string]bool // keyed by lowercase feature name
	Files    afero.Fs        // root for inlineFile
}

// Funcs returns the helpers available to every page template. and, or and
// not are the html/template builtins.
func Funcs(deps FuncDeps) template.FuncMap {
	return template.FuncMap{
		"transform": func(ctx any, variant string) (any, error) {
			if deps.Models == nil {
				return nil, fmt.Errorf("transform %q: no model registry", variant)
			}
			return deps.Models.Transform(ctx, variant)
		},
		"json":     jsonIndent,
		"jsonflat": jsonFlat,
		"nl2br":    nl2br,
		"hasItems": hasItems,
		"equals":   equals,
		"ternary":  ternary,
		"fallback": fallback,
		"featureEnabled": func(name string) bool {
			return deps.Features[strings.ToLower(name)]
		},
		"inlineFile": func(name string) (template.HTML, error) {
			if deps.Files == nil {
				return "", fmt.Errorf("inlineFile %q: no file system", name)
			}
			raw, err := afero.ReadFile(deps.Files, name)
			if err != nil {
				return "", fmt.Errorf("inlineFile: %w", err)
			}
			return template.HTML(raw), nil
		},
	}
}

func jsonIndent(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func jsonFlat(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// nl2br escapes s and turns every newline into a <br>.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// hasItems reports whether v is a non-empty string, slice, map or array, or
// a non-zero struct.
func hasItems(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Struct:
		return !rv.IsZero()
	}
	return false
}

// equals compares loosely: values of different types are equal when their
// scalar forms print the same, so "3" equals 3.
func equals(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if !isScalar(a) || !isScalar(b) {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isScalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func truthy(v any) bool {
	truth, _ := template.IsTrue(v)
	return truth
}

func ternary(cond, then, otherwise any) any {
	if truthy(cond) {
		return then
	}
	return otherwise
}

func fallback(v, otherwise any) any {
	if truthy(v) {
		return v
	}
	return otherwise
}
