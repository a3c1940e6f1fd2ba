// Package client talks to a mindmap server over its REST API. Client
// satisfies editor.Backend, so an editor can load and save remotely.
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

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/domain"
	"mindmap/internal/repository"
	"mindmap/internal/service"
)

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("mindmap server unavailable")

// APIError is a failure reported by the server in its response envelope
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Msg)
}

// Unwrap maps the server's status onto the errors its handlers started from
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusBadRequest:
		return service.ErrValidation
	}
	return nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Client is a remote editor.Backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates a client for the server at cfg.BaseURL
func New(cfg config.ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration()},
		logger:     logger,
	}

	b := cfg.Breaker
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mindmap-api",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval.Duration(),
		Timeout:     b.OpenTimeout.Duration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < b.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= b.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
		// Client errors are the caller's fault, not the server's
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < 500
			}
			return err == nil
		},
	})
	return c
}

// State reports the circuit breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Fetch returns a stored map
func (c *Client) Fetch(ctx context.Context, id string) (*domain.MindMap, error) {
	var m domain.MindMap
	if err := c.call(ctx, http.MethodGet, mapPath(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores a new map and returns its id
func (c *Client) Create(ctx context.Context, userID int64, title, content string) (string, error) {
	req := map[string]interface{}{"userId": userID, "title": title, "content": content}
	var m domain.MindMap
	if err := c.call(ctx, http.MethodPost, "/api/mindmaps", req, &m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// Update replaces the title and content of a stored map
func (c *Client) Update(ctx context.Context, id, title, content string) error {
	req := map[string]string{"title": title, "content": content}
	return c.call(ctx, http.MethodPut, mapPath(id), req, nil)
}

// Delete removes a stored map
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, mapPath(id), nil, nil)
}

// ListByUser returns summaries of a user's maps
func (c *Client) ListByUser(ctx context.Context, userID int64, filter domain.ListFilter) ([]domain.MindMapSummary, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Window != "" {
		q.Set("window", string(filter.Window))
	}

	var out []domain.MindMapSummary
	if err := c.call(ctx, http.MethodGet, "/api/mindmaps?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export streams a stored map rendered in format to w
func (c *Client) Export(ctx context.Context, id, format string, w io.Writer) error {
	path := mapPath(id) + "/export?format=" + url.QueryEscape(format)
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.send(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, decodeError(resp)
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			return nil, fmt.Errorf("read export: %w", err)
		}
		return nil, nil
	})
	return c.wrap(err)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.send(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			if resp.StatusCode >= 300 {
				return nil, &APIError{Status: resp.StatusCode, Code: resp.StatusCode, Msg: resp.Status}
			}
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if resp.StatusCode >= 300 || env.Code >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Code: env.Code, Msg: env.Msg}
		}
		if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return nil, fmt.Errorf("decode data: %w", err)
			}
		}
		return nil, nil
	})
	return c.wrap(err)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

func (c *Client) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func decodeError(resp *http.Response) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Msg == "" {
		return &APIError{Status: resp.StatusCode, Code: resp.StatusCode, Msg: resp.Status}
	}
	return &APIError{Status: resp.StatusCode, Code: env.Code, Msg: env.Msg}
}

func mapPath(id string) string {
	return "/api/mindmaps/" + url.PathEscape(id)
}
