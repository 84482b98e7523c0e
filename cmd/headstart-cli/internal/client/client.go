// Package client talks to the admin endpoints of a running headstart server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
)

// Client calls a headstart server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL. token is sent as a bearer
// token when set.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for unexpected response codes.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Code, e.Body)
}

// Hooks lists the registered hook topics.
func (c *Client) Hooks(ctx context.Context) ([]hooks.TopicInfo, error) {
	var topics []hooks.TopicInfo
	err := c.do(ctx, http.MethodGet, "/_admin/hooks.json", http.StatusOK, &topics)
	return topics, err
}

// Models lists the registered transformer keys.
func (c *Client) Models(ctx context.Context) ([]models.KeyInfo, error) {
	var keys []models.KeyInfo
	err := c.do(ctx, http.MethodGet, "/_admin/models.json", http.StatusOK, &keys)
	return keys, err
}

// Reload runs a reload cycle on the server and returns its report. A cycle
// with failures is returned together with an error.
func (c *Client) Reload(ctx context.Context) (*reload.Report, error) {
	var report reload.Report
	err := c.do(ctx, http.MethodPost, "/_reload?wait=true", http.StatusOK, &report)

	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusInternalServerError {
		if jerr := json.Unmarshal([]byte(se.Body), &report); jerr == nil {
			return &report, fmt.Errorf("reload finished with %d failures", len(report.Failures))
		}
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// RequestReload queues a reload without waiting for it.
func (c *Client) RequestReload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/_reload", http.StatusAccepted, nil)
}

func (c *Client) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
