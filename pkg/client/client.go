// Package client is a typed HTTP client for the controller API. Every
// method takes a context and maps non-2xx responses to *APIError, so
// callers can branch on the status without parsing messages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// DefaultBaseURL targets a controller on the local machine.
const DefaultBaseURL = "http://127.0.0.1:8099"

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response decoded from the controller's error
// payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (http %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the controller.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the controller, i.e. a
// start while running or a stop while not running.
func IsConflict(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusConflict
}

// Client calls the controller API. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New returns a client for baseURL, or DefaultBaseURL when empty. A
// bare host:port is accepted and treated as http, so the same value
// works for the daemon's listen address and for reaching it.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// Healthy reports whether the controller itself is reachable.
func (c *Client) Healthy(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Status fetches the lifecycle snapshot of the managed server.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/server/status", nil, &out)
	return out, err
}

// Logs fetches up to tail recent output lines; tail <= 0 fetches all
// buffered lines.
func (c *Client) Logs(ctx context.Context, tail int) (types.LogsResponse, error) {
	path := "/server/logs"
	if tail > 0 {
		path += "?tail=" + strconv.Itoa(tail)
	}
	var out types.LogsResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// ServerHealth asks the controller to probe the managed server's own
// health endpoint.
func (c *Client) ServerHealth(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	err := c.do(ctx, http.MethodGet, "/server/health", nil, &out)
	return out, err
}

// Start launches the managed server from the active configuration.
func (c *Client) Start(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.do(ctx, http.MethodPost, "/server/start", nil, &out)
	return out, err
}

// Stop terminates the managed server.
func (c *Client) Stop(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.do(ctx, http.MethodPost, "/server/stop", nil, &out)
	return out, err
}

// Detach releases the managed server from supervision, leaving it
// running, and returns the released PID.
func (c *Client) Detach(ctx context.Context) (int, error) {
	var out struct {
		PID int `json:"pid"`
	}
	err := c.do(ctx, http.MethodPost, "/server/detach", nil, &out)
	return out.PID, err
}

// Config fetches the active launch configuration.
func (c *Client) Config(ctx context.Context) (types.ServerConfig, error) {
	var out types.ServerConfig
	err := c.do(ctx, http.MethodGet, "/config", nil, &out)
	return out, err
}

// UpdateConfig replaces and persists the active launch configuration.
func (c *Client) UpdateConfig(ctx context.Context, cfg types.ServerConfig) (types.ServerConfig, error) {
	var out types.ServerConfig
	err := c.do(ctx, http.MethodPut, "/config", cfg, &out)
	return out, err
}

// Models lists GGUF files in a directory visible to the controller. An
// empty dir lets the controller fall back to the configured model's
// directory.
func (c *Client) Models(ctx context.Context, dir string) (types.ModelsResponse, error) {
	path := "/models"
	if dir != "" {
		path += "?dir=" + url.QueryEscape(dir)
	}
	var out types.ModelsResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Profiles lists saved profile names plus the last-active one.
func (c *Client) Profiles(ctx context.Context) (types.ProfilesResponse, error) {
	var out types.ProfilesResponse
	err := c.do(ctx, http.MethodGet, "/profiles", nil, &out)
	return out, err
}

// Profile fetches one saved snapshot.
func (c *Client) Profile(ctx context.Context, name string) (types.ServerConfig, error) {
	var out types.ServerConfig
	err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(name), nil, &out)
	return out, err
}

// SaveProfile stores a snapshot under name. A nil cfg snapshots the
// controller's active configuration.
func (c *Client) SaveProfile(ctx context.Context, name string, cfg *types.ServerConfig) (types.ProfilesResponse, error) {
	var in any
	if cfg != nil {
		in = *cfg
	}
	var out types.ProfilesResponse
	err := c.do(ctx, http.MethodPut, "/profiles/"+url.PathEscape(name), in, &out)
	return out, err
}

// LoadProfile copies the named snapshot into the active configuration
// and returns it.
func (c *Client) LoadProfile(ctx context.Context, name string) (types.ServerConfig, error) {
	var out types.ServerConfig
	err := c.do(ctx, http.MethodPost, "/profiles/"+url.PathEscape(name)+"/load", nil, &out)
	return out, err
}

// DeleteProfile removes the named snapshot.
func (c *Client) DeleteProfile(ctx context.Context, name string) (types.ProfilesResponse, error) {
	var out types.ProfilesResponse
	err := c.do(ctx, http.MethodDelete, "/profiles/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("controller request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(data))
		var payload types.ErrorResponse
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
