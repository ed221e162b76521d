// Package gateway is the single HTTP client the portal uses to reach the
// helpdesk REST API. Every call carries the caller's bearer token, is bounded
// by a timeout and honours context cancellation.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

const (
	genericFetchMessage = "could not load data, please retry"
	genericWriteMessage = "the change could not be saved"
	maxErrorBody        = 64 << 10
)

// opKind separates reads from writes so failures map onto the right error kind.
type opKind int

const (
	opRead opKind = iota
	opWrite
)

// Client wraps net/http with the backend base URL, auth header and error mapping.
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	timeout       time.Duration
	exportTimeout time.Duration
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every backend call.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a client for cfg.BaseURL.
func New(cfg config.BackendConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:       base,
		http:          &http.Client{},
		timeout:       cfg.Timeout(),
		exportTimeout: cfg.ExportTimeout(),
		logger:        logger.Named("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	resp, cancel, err := c.send(ctx, "", http.MethodGet, "/health", nil, "", c.timeout)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend health returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON issues a read and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.doJSON(ctx, opRead, token, http.MethodGet, c.endpoint(path, query), nil, out)
}

// writeJSON issues a mutation with an optional JSON body.
func (c *Client) writeJSON(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(raw)
	}
	return c.doJSON(ctx, opWrite, token, method, c.endpoint(path, nil), body, out)
}

func (c *Client) doJSON(ctx context.Context, kind opKind, token, method, target string, body io.Reader, out any) error {
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, kind, token, method, target, body, contentType, out)
}

func (c *Client) do(ctx context.Context, kind opKind, token, method, target string, body io.Reader, contentType string, out any) error {
	resp, cancel, err := c.send(ctx, token, method, target, body, contentType, c.timeout)
	if err != nil {
		return mapTransportError(kind, err)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatusError(kind, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeBody(resp.Body, out); err != nil {
		if kind == opRead {
			return apperrors.NewFetchError("unexpected response from server", err)
		}
		return apperrors.NewWriteFailure("unexpected response from server", http.StatusBadGateway, err)
	}
	return nil
}

// send performs the request under a bounded timeout. The returned cancel func
// must be called once the body has been consumed.
func (c *Client) send(ctx context.Context, token, method, target string, body io.Reader, contentType string, timeout time.Duration) (*http.Response, context.CancelFunc, error) {
	if !strings.HasPrefix(target, "http") {
		target = c.endpoint(target, nil)
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.RecordUpstream(method, req.URL.Path, status, elapsed)
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
		zap.Bool("authenticated", token != ""),
	)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}

// envelope matches backends that wrap payloads as {"data": ...}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeBody(r io.Reader, out any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			raw = env.Data
		}
	}
	return json.Unmarshal(raw, out)
}

type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// serverMessage extracts a human-readable message from an error response.
func serverMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(body.Error, &plain); err == nil {
		return plain
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}

func mapStatusError(kind opKind, resp *http.Response) error {
	msg := serverMessage(resp.Body)
	cause := fmt.Errorf("%s %s: status %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.NewAuthExpired(orDefault(msg, "your session has expired, please log in again"))
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.NewForbidden(orDefault(msg, "you are not allowed to do that"))
	case kind == opRead:
		return apperrors.NewFetchError(orDefault(msg, genericFetchMessage), cause)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.NewConflict(orDefault(msg, genericWriteMessage), nil)
	default:
		return apperrors.NewWriteFailure(orDefault(msg, genericWriteMessage), resp.StatusCode, cause)
	}
}

func mapTransportError(kind opKind, err error) error {
	msg := genericFetchMessage
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "the server took too long to respond"
	}
	if kind == opRead {
		return apperrors.NewFetchError(msg, err)
	}
	if msg == genericFetchMessage {
		msg = genericWriteMessage
	}
	return apperrors.NewWriteFailure(msg, http.StatusBadGateway, err)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
