// Package client talks to a jobtrack server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
)

const userHeader = "X-User-Id"

type Config struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8080".
	BaseURL string
	// User is sent as X-User-Id on every request.
	User string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("client: invalid BaseURL %q: %w", base, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		user:       strings.TrimSpace(cfg.User),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// APIError is a non-2xx response. It unwraps to mutate.ValidationError for 400 responses
// with field errors and to mutate.NotFoundError for 404 responses.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	// ID is the application the request addressed, if any.
	ID string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, mutate.ValidationError{Fields: e.Fields}.Error())
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest && len(e.Fields) > 0:
		return mutate.ValidationError{Fields: e.Fields}
	case e.StatusCode == http.StatusNotFound:
		return mutate.NotFoundError{Kind: "application", ID: e.ID}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, id string, query url.Values, in, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.Header.Set(userHeader, c.user)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "requestId", resp.Header.Get("X-Request-Id"))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, ID: id}
		var payload struct {
			Message string              `json:"message"`
			Errors  map[string][]string `json:"errors"`
		}
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		} else {
			apiErr.Message = payload.Message
			apiErr.Fields = payload.Errors
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func appPath(id string) string {
	return "/job-applications/" + url.PathEscape(strings.TrimSpace(id))
}

func (c *Client) List(ctx context.Context, params model.ListParams) (model.ListResult, error) {
	q := url.Values{}
	if s := strings.TrimSpace(params.Search); s != "" {
		q.Set("search", s)
	}
	if len(params.Sort) > 0 {
		parts := make([]string, 0, len(params.Sort))
		for _, f := range params.Sort {
			parts = append(parts, f.String())
		}
		q.Set("sort", strings.Join(parts, ","))
	}
	var out model.ListResult
	err := c.do(ctx, http.MethodGet, "/job-applications", "", q, nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (model.Application, error) {
	var out model.Application
	err := c.do(ctx, http.MethodGet, appPath(id), id, nil, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, p model.CreateParams) (model.Application, error) {
	var out model.Application
	err := c.do(ctx, http.MethodPost, "/job-applications", "", nil, p, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, patch model.Patch) (model.Application, error) {
	var out model.Application
	err := c.do(ctx, http.MethodPatch, appPath(id), id, nil, patch.Params(), &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, appPath(id), id, nil, nil, nil)
}

func (c *Client) DeleteRejected(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/job-applications/delete-rejected", "", nil, nil, nil)
}

func (c *Client) Rebalance(ctx context.Context, status model.Status) (map[string]float64, error) {
	var out struct {
		Changed map[string]float64 `json:"changed"`
	}
	q := url.Values{"status": []string{string(status)}}
	if err := c.do(ctx, http.MethodPost, "/job-applications/rebalance", "", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Changed == nil {
		out.Changed = map[string]float64{}
	}
	return out.Changed, nil
}
