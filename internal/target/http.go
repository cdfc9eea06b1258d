package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crucible-sec/crucible/internal/types"
)

// HTTPTarget probes a chatbot exposed over a JSON HTTP endpoint. The request
// body is {"input": <text>} and the response body must carry an "output"
// field.
type HTTPTarget struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
}

// HTTPOption configures an HTTPTarget.
type HTTPOption func(*HTTPTarget)

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTPTarget) {
		t.headers[key] = value
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTarget) {
		t.client.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTarget) {
		t.client = client
	}
}

// NewHTTPTarget creates a target for a JSON endpoint.
func NewHTTPTarget(name, url string, opts ...HTTPOption) *HTTPTarget {
	t := &HTTPTarget{
		name:    name,
		url:     url,
		headers: make(map[string]string),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name identifies the target.
func (t *HTTPTarget) Name() string {
	return t.name
}

type httpRequest struct {
	Input string `json:"input"`
}

type httpResponse struct {
	Output string `json:"output"`
}

// Respond sends the input to the endpoint and returns the output field.
func (t *HTTPTarget) Respond(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(httpRequest{Input: input})
	if err != nil {
		return "", types.WrapError(types.TARGET_INVOCATION_FAILED, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", types.WrapError(types.TARGET_INVOCATION_FAILED, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", types.WrapError(types.TARGET_TIMEOUT, "target request timed out", err)
		}
		return "", types.WrapError(types.TARGET_INVOCATION_FAILED, "target request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", types.NewError(types.TARGET_INVOCATION_FAILED,
			fmt.Sprintf("target returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", types.WrapError(types.TARGET_INVOCATION_FAILED, "failed to read response", err)
	}

	var parsed httpResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", types.WrapError(types.TARGET_INVOCATION_FAILED, "failed to decode response", err)
	}

	return parsed.Output, nil
}
