package fwdmcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// DefaultAPIURL is where `logfwd listen --api` serves by default
const DefaultAPIURL = "http://127.0.0.1:7070"

// API is the subset of the logfwd REST API the MCP tools call
type API interface {
	BaseURL() string
	Health(ctx context.Context) (*types.HealthResponse, error)
	Channels(ctx context.Context) ([]types.ChannelResponse, error)
	Events(ctx context.Context, channel string, q EventQuery) (*types.EventsResponse, error)
	Metrics(ctx context.Context, points int) (*types.MetricsResponse, error)
	Listeners(ctx context.Context) (*types.ListenersResponse, error)
	RestartListeners(ctx context.Context, addresses []string) (*types.StartResultResponse, error)
	StopListeners(ctx context.Context) (*types.ListenersResponse, error)
	SystemLogs(ctx context.Context, count int) (*types.LogsResponse, error)
	Export(ctx context.Context, channel, destination string) (*types.ExportResponse, error)
}

// EventQuery carries the filter parameters of an events request
type EventQuery struct {
	Count     int
	Include   []string
	Exclude   []string
	Hide      []string
	Regex     bool
	Highlight bool
}

// Values encodes the query the way the events endpoint reads it
func (q EventQuery) Values() url.Values {
	v := url.Values{}
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	for _, p := range q.Include {
		v.Add("include", p)
	}
	for _, p := range q.Exclude {
		v.Add("exclude", p)
	}
	if len(q.Hide) > 0 {
		v.Set("hide", strings.Join(q.Hide, ","))
	}
	if q.Regex {
		v.Set("regex", "1")
	}
	if q.Highlight {
		v.Set("highlight", "1")
	}
	return v
}

// APIError is a non-2xx answer from the REST API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API returned status %d (%s): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *types.ErrorInfo `json:"error"`
}

// HTTPClient talks to a running logfwd over its REST API
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client for the logfwd API
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root this client targets
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the envelope data into result
func (c *HTTPClient) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request with a JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request with a JSON body
func (c *HTTPClient) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request
func (c *HTTPClient) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	// a failed response may still carry data, e.g. a restart that bound nothing
	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	return nil
}

func channelPath(channel, suffix string) string {
	return "/api/v1/channels/" + url.PathEscape(channel) + suffix
}

// Health calls GET /api/health
func (c *HTTPClient) Health(ctx context.Context) (*types.HealthResponse, error) {
	var resp types.HealthResponse
	if err := c.Get(ctx, "/api/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Channels calls GET /api/v1/channels
func (c *HTTPClient) Channels(ctx context.Context) ([]types.ChannelResponse, error) {
	var resp types.ChannelListResponse
	if err := c.Get(ctx, "/api/v1/channels", &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// Events calls GET /api/v1/channels/:key/events
func (c *HTTPClient) Events(ctx context.Context, channel string, q EventQuery) (*types.EventsResponse, error) {
	path := channelPath(channel, "/events")
	if v := q.Values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var resp types.EventsResponse
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Metrics calls GET /api/v1/metrics, with points of rate history when > 0
func (c *HTTPClient) Metrics(ctx context.Context, points int) (*types.MetricsResponse, error) {
	path := "/api/v1/metrics"
	if points > 0 {
		path += "?points=" + strconv.Itoa(points)
	}
	var resp types.MetricsResponse
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Listeners calls GET /api/v1/listeners
func (c *HTTPClient) Listeners(ctx context.Context) (*types.ListenersResponse, error) {
	var resp types.ListenersResponse
	if err := c.Get(ctx, "/api/v1/listeners", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RestartListeners calls PUT /api/v1/listeners. When nothing binds the
// result is returned together with the BIND_FAILED error.
func (c *HTTPClient) RestartListeners(ctx context.Context, addresses []string) (*types.StartResultResponse, error) {
	var resp types.StartResultResponse
	err := c.Put(ctx, "/api/v1/listeners", types.ListenRequest{Addresses: addresses}, &resp)
	return &resp, err
}

// StopListeners calls DELETE /api/v1/listeners
func (c *HTTPClient) StopListeners(ctx context.Context) (*types.ListenersResponse, error) {
	var resp types.ListenersResponse
	if err := c.Delete(ctx, "/api/v1/listeners", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SystemLogs calls GET /api/v1/logs/system
func (c *HTTPClient) SystemLogs(ctx context.Context, count int) (*types.LogsResponse, error) {
	path := "/api/v1/logs/system"
	if count > 0 {
		path += "?count=" + strconv.Itoa(count)
	}
	var resp types.LogsResponse
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export calls POST /api/v1/channels/:key/export
func (c *HTTPClient) Export(ctx context.Context, channel, destination string) (*types.ExportResponse, error) {
	var resp types.ExportResponse
	err := c.Post(ctx, channelPath(channel, "/export"), types.ExportRequest{Destination: destination}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
