// Package directory holds HTTP clients for the sibling directory services.
// The loan orchestrator only talks to the user and book directories through
// these adapters, never through their Go packages.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
)

const (
	defaultCallTimeout       = 5 * time.Second
	errorBodyReadLimit int64 = 1024
)

// client is the shared transport for all directory clients.
type client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides the default per-call timeout. Ignored when a custom
// HTTP client is also supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func newClient(baseURL string, opts ...Option) (*client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("directory base URL is required")
	}

	c := &client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultCallTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// doJSON executes one request and decodes a JSON response into out. Non-2xx
// statuses map onto the error taxonomy: 404 becomes a not-found, 400 carries
// the upstream validation detail, anything else is a dependency failure.
func (c *client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal directory request")
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build directory request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "directory unavailable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode directory response")
		}
		return nil

	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, readDetail(resp.Body, "resource not found"))

	case resp.StatusCode == http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeValidation, readDetail(resp.Body, "directory rejected request"))

	default:
		detail := readDetail(resp.Body, "")
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, detail), "directory request failed")
	}
}

// readDetail extracts the {"detail": ...} error body the services emit.
func readDetail(body io.Reader, fallback string) string {
	raw, _ := io.ReadAll(io.LimitReader(body, errorBodyReadLimit))
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		return payload.Detail
	}
	if fallback != "" {
		return fallback
	}
	return strings.TrimSpace(string(raw))
}
