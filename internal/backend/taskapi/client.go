// Package taskapi implements the service.Service interface over the task
// store's JSON/HTTP API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	tasksPath     = "/tasks"
	errorTestPath = "/error-test"

	// RequestIDHeader carries a per-request UUID for log correlation.
	RequestIDHeader = "X-Request-Id"
)

// Client implements service.Service against a remote task store.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a client for the task store configured in cfg.
// Outgoing requests go through otelhttp and carry a W3C traceparent
// header. Without a tracer provider the trace ID is the request's
// X-Request-Id, so store logs can be matched either way.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithPropagators(propagation.TraceContext{}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "todo " + r.Method + " " + r.URL.Path
			}),
		),
	}
	c := NewWithHTTPClient(cfg.BaseURL, httpClient, logger)
	c.timeout = cfg.RequestTimeout
	return c
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// listResponse keeps tasks raw so a missing key can be told apart from null.
type listResponse struct {
	Tasks json.RawMessage `json:"tasks"`
}

type createRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type updateRequest struct {
	Completed bool `json:"completed"`
}

// ListTasks returns all tasks in the order the store sent them.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	const op = "list tasks"

	var resp listResponse
	if err := c.do(ctx, op, http.MethodGet, tasksPath, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tasks) == 0 {
		return nil, fmt.Errorf("decode %s response: missing tasks", op)
	}

	var tasks []service.Task
	if err := json.Unmarshal(resp.Tasks, &tasks); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	for _, task := range tasks {
		if task.ID == "" {
			return nil, fmt.Errorf("decode %s response: task without id", op)
		}
	}
	if tasks == nil {
		return []service.Task{}, nil
	}
	return tasks, nil
}

// CreateTask creates a new, not completed task.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	var task service.Task
	body := createRequest{Title: title, Completed: false}
	if err := c.do(ctx, "create task", http.MethodPost, tasksPath, body, &task); err != nil {
		return service.Task{}, err
	}
	if task.ID == "" {
		return service.Task{}, errors.New("decode create task response: missing id")
	}
	return task, nil
}

// DeleteTask deletes a task. The response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id service.TaskID) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil)
}

// SetCompleted updates the completed flag. The response body is ignored.
func (c *Client) SetCompleted(ctx context.Context, id service.TaskID, completed bool) error {
	return c.do(ctx, "update task", http.MethodPatch, taskPath(id), updateRequest{Completed: completed}, nil)
}

// TriggerError calls the diagnostic endpoint. The endpoint answers with a
// JSON body whatever its status code, so the body is returned as long as it
// is valid JSON; a non-JSON error response is reported as an API error.
func (c *Client) TriggerError(ctx context.Context) (json.RawMessage, error) {
	const op = "trigger error"

	res, cancel, err := c.send(ctx, op, http.MethodGet, errorTestPath, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, wrapError(op, err)
	}
	if json.Valid(data) {
		return json.RawMessage(bytes.TrimSpace(data)), nil
	}
	if err := googleapi.CheckResponseWithBody(res, data); err != nil {
		return nil, wrapError(op, err)
	}
	return nil, fmt.Errorf("decode %s response: invalid JSON", op)
}

// do sends a request and decodes a JSON response into out.
// A nil out drains and discards the body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	res, cancel, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer cancel()
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(op, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// send issues one request. The returned cancel func must be called once
// the response body has been consumed.
func (c *Client) send(ctx context.Context, op, method, path string, body any) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	requestID := uuid.New()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, spanContext(requestID))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	req.Header.Set(RequestIDHeader, requestID.String())

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		cancel()
		c.logger.Debug("task store request failed",
			"op", op, "method", method, "path", path, "request_id", requestID.String(), "error", err)
		return nil, nil, wrapError(op, err)
	}

	c.logger.Debug("task store request",
		"op", op,
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"request_id", requestID.String(),
		"duration", time.Since(start),
	)
	return res, cancel, nil
}

// spanContext derives a sampled parent span from a request ID: the trace ID
// is the UUID itself and the span ID its last eight bytes.
func spanContext(id uuid.UUID) trace.SpanContext {
	var spanID trace.SpanID
	copy(spanID[:], id[8:])
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID(id),
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}

func taskPath(id service.TaskID) string {
	return tasksPath + "/" + url.PathEscape(id.String())
}

// wrapError prefixes API errors with the operation and classifies them.
// 404 responses match service.ErrNotFound; the *googleapi.Error stays
// reachable through errors.As.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: request timed out: %w", op, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", op, service.ErrNotFound, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
