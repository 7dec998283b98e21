// Package ollama talks to a local or remote Ollama service: readiness probes
// and model inventory over HTTP, install/serve/pull through the CLI.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client probes an Ollama endpoint over its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Second},
		log:     log,
	}
}

// Version hits the version probe endpoint. A nil error means the service is up.
func (c *Client) Version(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("version probe: %s returned %d", c.baseURL, resp.StatusCode)
	}
	return nil
}

// Ready reports whether the version probe currently succeeds.
func (c *Client) Ready(ctx context.Context) bool { return c.Version(ctx) == nil }

// WaitReady polls the version probe once a second until it succeeds or the
// timeout elapses. A timeout is a reported error, never a silent fall-through.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		if err := c.Version(ctx); err == nil {
			return nil
		}
		select {
		case <-time.After(1 * time.Second):
		case <-ctx.Done():
			return fmt.Errorf("timed out after %s waiting for %s to become ready", timeout, c.baseURL)
		}
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the names in the local model inventory.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: %s returned %d", c.baseURL, resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode model inventory: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether id matches an inventory entry. Matching is by
// substring so "llama3.1" matches "llama3.1:latest".
func (c *Client) HasModel(ctx context.Context, id string) (bool, error) {
	names, err := c.Models(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if strings.Contains(n, id) {
			return true, nil
		}
	}
	return false, nil
}
