// Package content reads the site's typed documents.
package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"
)

// ErrNotFound is returned when no document exists at a path.
var ErrNotFound = errors.New("document not found")

// Document is a typed content item. Items holds the document's fields; link
// fields hold the repository path of the linked document or binary.
type Document struct {
	ID          string         `yaml:"id" json:"id"`
	Type        string         `yaml:"type" json:"type"`
	Path        string         `yaml:"-" json:"path"`
	PublishedAt time.Time      `yaml:"published" json:"published"`
	Items       map[string]any `yaml:"items" json:"items"`
}

// TypeTag implements models.Typed.
func (d *Document) TypeTag() string {
	if d == nil {
		return ""
	}
	return d.Type
}

// Name is the last element of the document's path.
func (d *Document) Name() string {
	return path.Base(d.Path)
}

// String returns the string item under key, or "".
func (d *Document) String(key string) string {
	if d == nil {
		return ""
	}
	if s, ok := d.Items[key].(string); ok {
		return s
	}
	return ""
}

// Map returns the map item under key, or nil.
func (d *Document) Map(key string) map[string]any {
	if d == nil {
		return nil
	}
	return asMap(d.Items[key])
}

// List returns the list item under key, or nil.
func (d *Document) List(key string) []any {
	if d == nil {
		return nil
	}
	if l, ok := d.Items[key].([]any); ok {
		return l
	}
	return nil
}

// Strings returns the list item under key as strings.
func (d *Document) Strings(key string) []string {
	var out []string
	for _, v := range d.List(key) {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return nil
}

// Query selects documents from a Store.
type Query struct {
	Type       string            // document type; empty matches all
	PathPrefix string            // repository path prefix; empty matches all
	Where      map[string]string // item key equals value
	Tags       []string          // the "tags" item must contain every tag
	Descending bool              // newest first when true
	Limit      int               // 0 means no limit
}

// Result is the outcome of a Query. TotalSize counts matches before Limit.
type Result struct {
	TotalSize int         `json:"totalSize"`
	Documents []*Document `json:"documents"`
}

// Store is the read side of the content repository.
type Store interface {
	Get(ctx context.Context, docPath string) (*Document, error)
	Query(ctx context.Context, q Query) (*Result, error)
}

// AsDocument asserts that a transformer context is a document.
func AsDocument(ctx any) (*Document, error) {
	doc, ok := ctx.(*Document)
	if !ok || doc == nil {
		return nil, fmt.Errorf("expected *content.Document, got %T", ctx)
	}
	return doc, nil
}
