package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/headstart/internal/config"
	"github.com/nfrund/headstart/internal/reload"
)

const testToken = "test-admin-token"

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "Headstart Test",
		Addr:          ":0",
		ContentDir:    "site",
		TemplatesMode: "embed",
		ScriptsDir:    "scripts",
		ScriptTimeout: time.Second,
		SessionSecret: "a-very-long-session-secret-for-tests-only",
		AdminToken:    testToken,
		ImageBase:     "/binaries",
		Features:      map[string]bool{},
		LogFormat:     "text",
		LogLevel:      "debug",
	}
}

func writeArticle(t *testing.T, fs afero.Fs, title string) {
	t.Helper()
	body := `
type: xinmods:blog
published: 2024-03-01T10:00:00Z
items:
  title: ` + title + `
  category: news
`
	require.NoError(t, afero.WriteFile(fs, "site/content/documents/blog/articles/news/hello.yaml", []byte(body), 0o644))
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeArticle(t, fs, "Hello World")

	s, err := New(cfg, fs)
	require.NoError(t, err)
	return s, fs
}

func get(s *Server, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "text/html")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	return rec
}

func post(s *Server, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	return rec
}

func TestServer_Pages(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := get(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Headstart Test")
	assert.Contains(t, rec.Body.String(), "Hello World")

	rec = get(s, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello World")
	assert.Contains(t, rec.Body.String(), "1 articles")

	rec = get(s, "/blog/news/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello World")
}

func TestServer_MissingDocumentIs404(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := get(s, "/blog/news/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Not Found")

	req := httptest.NewRequest(http.MethodGet, "/blog/news/missing", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"page not found"}`, rec.Body.String())
}

func TestServer_Assets(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := get(s, "/assets/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=")
}

func TestServer_AdminRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, get(s, "/_admin").Code)
	assert.Equal(t, http.StatusUnauthorized, post(s, "/_reload").Code)

	rec := get(s, "/_admin", "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blogging")

	rec = get(s, "/_admin/hooks.json", "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "view.blogging.landing")
}

func TestServer_AdminDisabledWithoutToken(t *testing.T) {
	cfg := testConfig()
	cfg.AdminToken = ""
	s, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusNotFound, get(s, "/_admin").Code)
	assert.Equal(t, http.StatusNotFound, post(s, "/_reload").Code)
}

func TestServer_ReloadPicksUpContent(t *testing.T) {
	s, fs := newTestServer(t, testConfig())

	require.Contains(t, get(s, "/blog").Body.String(), "Hello World")
	writeArticle(t, fs, "Changed Title")
	assert.Contains(t, get(s, "/blog").Body.String(), "Hello World", "content is cached until a reload")

	rec := post(s, "/_reload?wait=true", "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report reload.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, len(s.Coordinator().Labels()), report.Ran)
	assert.Empty(t, report.Failures)

	body := get(s, "/blog").Body.String()
	assert.Contains(t, body, "Changed Title")
	assert.NotContains(t, body, "Hello World")
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	get(s, "/health")

	rec := get(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "headstart_requests_total")
}

func TestServer_SeveralServersInOneProcess(t *testing.T) {
	assert.NotPanics(t, func() {
		newTestServer(t, testConfig())
		newTestServer(t, testConfig())
	})
}
