// Package gateway is the client of the REST backend that owns templates,
// proposals and contracts. Every call is a single attempt: a transport error
// or a non-2xx status is returned to the caller as is.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Recorder receives one observation per backend call.
type Recorder interface {
	ObserveGateway(resource, method string, status int, elapsed time.Duration)
}

// Client talks to the backend rooted at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Recorder   Recorder
}

// NewClient returns a client without a request timeout. Callers bound calls
// with their context.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Status returns the backend status carried by err, or 0.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// resource is the first path segment, used as a metrics label.
func resource(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	return p
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	data, err := c.send(req, path)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, path, err)
	}
	return nil
}

// send performs req and returns the body of a 2xx answer.
func (c *Client) send(req *http.Request, path string) ([]byte, error) {
	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(path, req.Method, 0, elapsed)
		c.Logger.Warn("backend call failed",
			zap.String("method", req.Method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()
	c.observe(path, req.Method, resp.StatusCode, elapsed)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.Method, path, err)
	}
	c.Logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) observe(path, method string, status int, elapsed time.Duration) {
	if c.Recorder != nil {
		c.Recorder.ObserveGateway(resource(path), method, status, elapsed)
	}
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("%s/%d", collection, id)
}
