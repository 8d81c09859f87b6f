package contentunderstanding

import (
	"context"
	"net/http"
	"sync"
	"time"

	"doc-intel-pipeline/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

type recordedCall struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	At      time.Duration
}

// fakeTransport answers each call through respond and records what was sent.
type fakeTransport struct {
	mu      sync.Mutex
	clock   *fakeClock
	calls   []recordedCall
	respond func(n int, call recordedCall) (*domain.Response, error)
}

func (f *fakeTransport) Do(_ context.Context, method, url string, headers map[string]string, body []byte) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	call := recordedCall{Method: method, URL: url, Headers: h, Body: body}
	if f.clock != nil {
		call.At = f.clock.Elapsed()
	}
	f.calls = append(f.calls, call)
	return f.respond(len(f.calls), call)
}

func (f *fakeTransport) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func statusResponse(body string) *domain.Response {
	return &domain.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(body)}
}

func acceptedResponse(location string) *domain.Response {
	h := http.Header{}
	if location != "" {
		h.Set(OperationLocationHeader, location)
	}
	return &domain.Response{StatusCode: http.StatusAccepted, Header: h, Body: []byte(`{}`)}
}

// fakeClock never blocks; Sleep advances Now by d.
type fakeClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeClock{start: t, now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}
