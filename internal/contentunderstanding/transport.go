// Package contentunderstanding is the client for the asynchronous document
// analysis service: it builds submissions, extracts the operation handle and
// polls the operation to a terminal state.
package contentunderstanding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

const maxErrorBodyBytes = 2048

// HTTPTransport implements domain.Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport whose requests time out after timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

// NewHTTPTransportWithClient wraps an existing client, e.g. one from httptest.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Do sends one request and returns the full response body. Any non-2xx status
// is returned as a transport AppError carrying the upstream status.
func (t *HTTPTransport) Do(
	ctx context.Context,
	method string,
	rawURL string,
	headers map[string]string,
	body []byte,
) (*domain.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to build request", 0, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(fmt.Sprintf("%s %s failed", method, redactURL(rawURL)), 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read response body", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := apperrors.NewTransportError(
			fmt.Sprintf("%s %s returned status %d", method, redactURL(rawURL), resp.StatusCode),
			resp.StatusCode,
			nil,
		)
		appErr.Details = truncate(string(data), maxErrorBodyBytes)
		return nil, appErr
	}

	return &domain.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// redactURL drops the query string, which may carry SAS tokens.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
