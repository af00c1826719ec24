// Package rest holds the request plumbing shared by the third-party API clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"profit-calculator/pkg/metrics"
)

// ErrMalformedResponse marks a success status whose body could not be used.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from a remote service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error reaching %s: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Request describes one JSON call.
type Request struct {
	Service string
	Method  string
	URL     string
	Headers map[string]string
	Payload interface{}
}

// Do sends the request and returns the body of a 2xx response.
// Non-2xx answers become *APIError, transport failures *TransportError.
func Do(ctx context.Context, client HTTPDoer, r Request) ([]byte, error) {
	var body io.Reader
	if r.Payload != nil {
		jsonPayload, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("error creating payload: %w", err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if r.Payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.ExternalRequests.WithLabelValues(r.Service, "error").Inc()
		return nil, &TransportError{Service: r.Service, Err: err}
	}
	defer resp.Body.Close()

	metrics.ExternalRequests.WithLabelValues(r.Service, statusClass(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: r.Service, Err: fmt.Errorf("error reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Service:    r.Service,
			StatusCode: resp.StatusCode,
			Message:    ErrorMessage(resp.StatusCode, respBody),
		}
	}
	return respBody, nil
}

// ErrorMessage picks a human readable message out of an error body.
// It tries "message", then "error", then the first entry of "errors",
// and falls back to "HTTP <status>".
func ErrorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d", status)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}

	if msg := textOf(fields["message"]); msg != "" {
		return msg
	}
	if msg := textOf(fields["error"]); msg != "" {
		return msg
	}

	var list []json.RawMessage
	if err := json.Unmarshal(fields["errors"], &list); err == nil && len(list) > 0 {
		if msg := textOf(list[0]); msg != "" {
			return msg
		}
	}
	return fallback
}

// textOf accepts a JSON string, an array of strings, or an object with a
// "message" field.
func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
