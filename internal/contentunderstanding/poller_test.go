package contentunderstanding

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHandle = domain.OperationHandle("https://cu.example.com/contentunderstanding/analyzerResults/op-42?api-version=2024-12-01-preview")

func newTestPoller(clock *fakeClock, respond func(n int, call recordedCall) (*domain.Response, error)) (*Poller, *fakeTransport) {
	tr := &fakeTransport{clock: clock, respond: respond}
	return NewPoller(tr, clock, nopLogger{}, map[string]string{"Ocp-Apim-Subscription-Key": "k"}), tr
}

func TestPoll_SucceedsAfterRunning(t *testing.T) {
	clock := newFakeClock()
	p, tr := newTestPoller(clock, func(n int, _ recordedCall) (*domain.Response, error) {
		if n < 3 {
			return statusResponse(`{"id":"op-42","status":"Running"}`), nil
		}
		return statusResponse(`{"id":"op-42","status":"Succeeded","result":{"contents":[]}}`), nil
	})

	res, err := p.Poll(context.Background(), testHandle, domain.PollPolicy{Timeout: 30 * time.Second, Interval: 2 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, domain.OperationSucceeded, res.Status)
	assert.Equal(t, "op-42", res.ID)
	assert.JSONEq(t, `{"id":"op-42","status":"Succeeded","result":{"contents":[]}}`, string(res.Payload))

	calls := tr.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, "GET", c.Method)
		assert.Equal(t, string(testHandle), c.URL)
		assert.Equal(t, "k", c.Headers["Ocp-Apim-Subscription-Key"])
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.Slept())
}

func TestPoll_StatusIsCaseInsensitive(t *testing.T) {
	clock := newFakeClock()
	p, _ := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return statusResponse(`{"status":"SUCCEEDED"}`), nil
	})

	res, err := p.Poll(context.Background(), testHandle, domain.DefaultPollPolicy())
	require.NoError(t, err)
	assert.Equal(t, domain.OperationSucceeded, res.Status)
	assert.Empty(t, clock.Slept())
}

func TestPoll_FailedReturnsPayload(t *testing.T) {
	clock := newFakeClock()
	body := `{"id":"op-42","status":"failed","error":{"code":"InvalidContent"}}`
	p, tr := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return statusResponse(body), nil
	})

	_, err := p.Poll(context.Background(), testHandle, domain.DefaultPollPolicy())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeOperationFailed))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.JSONEq(t, body, string(appErr.Payload))
	assert.Equal(t, "op-42", appErr.Details)
	assert.Len(t, tr.Calls(), 1)
}

func TestPoll_TimeoutBoundsElapsedTime(t *testing.T) {
	clock := newFakeClock()
	p, tr := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return statusResponse(`{"status":"Running"}`), nil
	})
	policy := domain.PollPolicy{Timeout: 10 * time.Second, Interval: 3 * time.Second}

	_, err := p.Poll(context.Background(), testHandle, policy)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	assert.Contains(t, err.Error(), "10.00 seconds")

	// Queries at 0s, 3s, 6s and 9s; the deadline check at 12s stops the loop.
	calls := tr.Calls()
	require.Len(t, calls, 4)
	for _, c := range calls {
		assert.LessOrEqual(t, c.At, policy.Timeout)
	}
	assert.LessOrEqual(t, clock.Elapsed(), policy.Timeout+policy.Interval)
}

// steppingClock advances by the next queued step after each Now call.
type steppingClock struct {
	*fakeClock
	steps []time.Duration
}

func (c *steppingClock) Now() time.Time {
	now := c.fakeClock.Now()
	if len(c.steps) > 0 {
		c.fakeClock.Advance(c.steps[0])
		c.steps = c.steps[1:]
	}
	return now
}

func TestPoll_TimeoutBeforeFirstQuery(t *testing.T) {
	clock := &steppingClock{fakeClock: newFakeClock(), steps: []time.Duration{11 * time.Second}}
	tr := &fakeTransport{clock: clock.fakeClock, respond: func(int, recordedCall) (*domain.Response, error) {
		t.Fatalf("transport should not be called")
		return nil, nil
	}}
	p := NewPoller(tr, clock, nopLogger{}, nil)

	_, err := p.Poll(context.Background(), testHandle, domain.PollPolicy{Timeout: 10 * time.Second, Interval: time.Second})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	assert.Empty(t, tr.Calls())
	assert.Empty(t, clock.Slept())
}

// The budget starts when Poll is entered, so the first query always goes out
// unless the clock has already moved past the timeout by the first check.
func TestPoll_NoQueryAfterDeadline(t *testing.T) {
	clock := newFakeClock()
	p, tr := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		// A slow response consumes the whole budget.
		clock.Advance(11 * time.Second)
		return statusResponse(`{"status":"NotStarted"}`), nil
	})

	_, err := p.Poll(context.Background(), testHandle, domain.PollPolicy{Timeout: 10 * time.Second, Interval: time.Second})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	assert.Len(t, tr.Calls(), 1)
}

func TestPoll_UnknownStatusKeepsPolling(t *testing.T) {
	clock := newFakeClock()
	statuses := []string{`{"status":""}`, `{"status":"NotStarted"}`, `{"status":"Succeeded"}`}
	p, tr := newTestPoller(clock, func(n int, _ recordedCall) (*domain.Response, error) {
		return statusResponse(statuses[n-1]), nil
	})

	_, err := p.Poll(context.Background(), testHandle, domain.PollPolicy{Timeout: time.Minute, Interval: time.Second})
	require.NoError(t, err)
	assert.Len(t, tr.Calls(), 3)
}

func TestPoll_TransportErrorIsNotRetried(t *testing.T) {
	clock := newFakeClock()
	p, tr := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return nil, apperrors.NewTransportError("GET failed", 503, nil)
	})

	_, err := p.Poll(context.Background(), testHandle, domain.DefaultPollPolicy())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.Len(t, tr.Calls(), 1)
	assert.Empty(t, clock.Slept())
}

func TestPoll_UndecodableStatusIsTransportError(t *testing.T) {
	clock := newFakeClock()
	p, _ := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return statusResponse(`<html>gateway</html>`), nil
	})

	_, err := p.Poll(context.Background(), testHandle, domain.DefaultPollPolicy())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
}

func TestPoll_MissingStatusFieldIsTransportError(t *testing.T) {
	clock := newFakeClock()
	p, tr := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		return statusResponse(`{"id":"op-42"}`), nil
	})

	_, err := p.Poll(context.Background(), testHandle, domain.DefaultPollPolicy())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeTransport, appErr.Type)
	assert.Equal(t, 200, appErr.UpstreamStatus)
	assert.Len(t, tr.Calls(), 1)
	assert.Empty(t, clock.Slept())
}

func TestPoll_RejectsInvalidInputsWithoutQuerying(t *testing.T) {
	tests := []struct {
		name     string
		handle   domain.OperationHandle
		policy   domain.PollPolicy
		wantType apperrors.ErrorType
	}{
		{"empty handle", "", domain.DefaultPollPolicy(), apperrors.ErrorTypeMissingOperationHandle},
		{"zero interval", testHandle, domain.PollPolicy{Timeout: time.Second}, apperrors.ErrorTypeInvalidInput},
		{"interval not below timeout", testHandle, domain.PollPolicy{Timeout: time.Second, Interval: time.Second}, apperrors.ErrorTypeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, tr := newTestPoller(newFakeClock(), func(int, recordedCall) (*domain.Response, error) {
				t.Fatalf("transport should not be called")
				return nil, nil
			})
			_, err := p.Poll(context.Background(), tt.handle, tt.policy)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			assert.Empty(t, tr.Calls())
		})
	}
}

func TestPoll_ContextCancelledDuringWait(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	p, _ := newTestPoller(clock, func(int, recordedCall) (*domain.Response, error) {
		cancel()
		return statusResponse(`{"status":"Running"}`), nil
	})

	_, err := p.Poll(ctx, testHandle, domain.DefaultPollPolicy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSystemClock_SleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SystemClock{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, SystemClock{}.Sleep(context.Background(), time.Millisecond))
}
