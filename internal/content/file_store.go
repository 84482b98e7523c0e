package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileStore is a Store over a directory of YAML documents. The file
// <root>/content/documents/blog/hello.yaml is served at the repository path
// /content/documents/blog/hello. Documents are read on first use and cached
// until Invalidate.
type FileStore struct {
	fs   afero.Fs
	root string

	mu   sync.RWMutex
	docs map[string]*Document
}

// NewFileStore creates a store reading from root on fs.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

// Invalidate drops the cache so the next read sees the files on disk.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
}

// Get returns the document at docPath or ErrNotFound.
func (s *FileStore) Get(ctx context.Context, docPath string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := s.documents()
	if err != nil {
		return nil, err
	}
	doc, ok := docs[path.Clean("/"+docPath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docPath)
	}
	return doc, nil
}

// Query returns the documents matching q ordered by publication date, then path.
func (s *FileStore) Query(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := s.documents()
	if err != nil {
		return nil, err
	}

	var matched []*Document
	for _, doc := range docs {
		if q.matches(doc) {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			if q.Descending {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.Path < b.Path
	})

	result := &Result{TotalSize: len(matched), Documents: matched}
	if q.Limit > 0 && len(matched) > q.Limit {
		result.Documents = matched[:q.Limit]
	}
	return result, nil
}

func (q Query) matches(doc *Document) bool {
	if q.Type != "" && doc.Type != q.Type {
		return false
	}
	if q.PathPrefix != "" && !strings.HasPrefix(doc.Path, q.PathPrefix) {
		return false
	}
	for k, v := range q.Where {
		if fmt.Sprint(doc.Items[k]) != v {
			return false
		}
	}
	if len(q.Tags) > 0 {
		have := make(map[string]bool)
		for _, t := range doc.Strings("tags") {
			have[t] = true
		}
		for _, t := range q.Tags {
			if !have[t] {
				return false
			}
		}
	}
	return true
}

func (s *FileStore) documents() (map[string]*Document, error) {
	s.mu.RLock()
	docs := s.docs
	s.mu.RUnlock()
	if docs != nil {
		return docs, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs != nil {
		return s.docs, nil
	}

	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	s.docs = docs
	return docs, nil
}

func (s *FileStore) load() (map[string]*Document, error) {
	docs := make(map[string]*Document)

	if exists, _ := afero.DirExists(s.fs, s.root); !exists {
		slog.Warn("Content directory does not exist", "root", s.root)
		return docs, nil
	}

	err := afero.Walk(s.fs, s.root, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(file)
		if info.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}

		raw, err := afero.ReadFile(s.fs, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		var doc Document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}

		rel, err := filepath.Rel(s.root, file)
		if err != nil {
			return err
		}
		doc.Path = "/" + filepath.ToSlash(strings.TrimSuffix(rel, ext))
		if doc.ID == "" {
			doc.ID = doc.Path
		}
		if doc.Items == nil {
			doc.Items = make(map[string]any)
		}
		docs[doc.Path] = &doc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load content from %s: %w", s.root, err)
	}

	slog.Debug("Loaded content documents", "root", s.root, "count", len(docs))
	return docs, nil
}
