// Package remote calls the Markdown to Excel conversion endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "md2xlsx-ui/remote"

// Call outcomes recorded in metrics.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// NetworkError reports a call that produced no usable response: the endpoint was
// unreachable or answered with something that is not a conversion response.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrUndecodable is wrapped by NetworkError when the body is not a conversion response.
var ErrUndecodable = errors.New("response is not a conversion result")

// Client posts conversion requests. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records call durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for endpoint. The default HTTP client has no timeout; callers
// bound the call with their context.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Convert posts req as JSON and decodes the response. Any decoded response is returned
// without error, including one with Success false and a non-2xx status; transport
// failures and undecodable bodies return a *NetworkError.
func (c *Client) Convert(ctx context.Context, req models.ConvertRequest) (*models.ConvertResponse, error) {
	ctx, span := c.tracer.Start(ctx, "md2xlsx.convert",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", c.endpoint),
			attribute.Int("md2xlsx.content_length", len(req.MarkdownContent)),
			attribute.Bool("md2xlsx.apply_formatting", req.ApplyFormatting),
			attribute.Bool("md2xlsx.auto_adjust_width", req.AutoAdjustWidth),
		),
	)
	defer span.End()
	start := time.Now()

	resp, err := c.do(ctx, req)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RemoteCall(OutcomeFailed, time.Since(start))
		return nil, err
	case !resp.Success:
		span.SetAttributes(attribute.Int("md2xlsx.errors", len(resp.Failures())))
		span.SetStatus(codes.Error, "conversion rejected")
		c.metrics.RemoteCall(OutcomeRejected, time.Since(start))
	default:
		span.SetAttributes(
			attribute.Int("md2xlsx.tables_found", resp.TablesFound),
			attribute.Int("md2xlsx.warnings", len(resp.Warnings)),
		)
		span.SetStatus(codes.Ok, "")
		c.metrics.RemoteCall(OutcomeSucceeded, time.Since(start))
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, req models.ConvertRequest) (*models.ConvertResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Endpoint: c.endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Endpoint: c.endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: c.endpoint, Err: err}
	}

	var out models.ConvertResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &NetworkError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("%w (status %d): %v", ErrUndecodable, httpResp.StatusCode, err),
		}
	}
	return &out, nil
}
