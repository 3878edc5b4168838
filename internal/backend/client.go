// Package backend talks to the external project-finance model service. The dashboard
// never runs the model itself; it forwards run requests and relays the progress stream.
package backend

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

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
)

// Backend endpoints.
const (
	PathRunModel           = "/api/run-model"
	PathRunModelStream     = "/api/run-model-stream"
	PathSensitivity        = "/api/sensitivity"
	PathSensitivityStream  = "/api/sensitivity-stream"
	PathAnalyzePriceCurves = "/api/price-curves/analyze"
	PathUploadPriceCurves  = "/api/price-curves/upload"
)

// ConnectHint is appended to connection failures shown to users.
const ConnectHint = "Failed to connect to backend. Make sure the Python backend is running on port 10000."

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Client is an HTTP client for the model backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no overall timeout; streams end when the request context does.
	streamClient *http.Client
}

// NewClient creates a client for the backend at baseURL. The timeout bounds
// non-streaming calls.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends body as JSON and returns the backend's JSON answer.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backend request: %w", err)
	}
	return c.post(ctx, c.httpClient, path, "application/json", bytes.NewReader(payload))
}

// PostRaw forwards an already encoded body, such as a multipart form, unchanged.
func (c *Client) PostRaw(ctx context.Context, path, contentType string, body io.Reader) (json.RawMessage, error) {
	return c.post(ctx, c.httpClient, path, contentType, body)
}

func (c *Client) post(ctx context.Context, hc *http.Client, path, contentType string, body io.Reader) (json.RawMessage, error) {
	resp, err := c.do(ctx, hc, path, contentType, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: backend returned invalid JSON", apperrors.ErrBackendUnavailable)
	}
	return json.RawMessage(data), nil
}

// Stream starts a streaming call and returns the open event stream. The caller
// must close it. Cancelling ctx aborts the upstream request.
func (c *Client) Stream(ctx context.Context, path string, body any) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backend request: %w", err)
	}
	resp, err := c.do(ctx, c.streamClient, path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Backend returned %d", resp.StatusCode),
		}
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	return resp, nil
}

// statusError uses the backend's own message when its error body carries one.
func statusError(code int, data []byte) *StatusError {
	var body struct {
		Message string `json:"message"`
	}
	msg := fmt.Sprintf("Backend returned %d", code)
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	return &StatusError{StatusCode: code, Message: msg}
}

// AsStatusError unwraps a backend status error.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
