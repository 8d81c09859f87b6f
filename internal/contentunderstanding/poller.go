package contentunderstanding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

type operationState struct {
	ID     string  `json:"id"`
	Status *string `json:"status"`
}

// Poller drives an operation handle to a terminal state.
type Poller struct {
	transport domain.Transport
	clock     domain.Clock
	logger    domain.Logger
	headers   map[string]string
}

// NewPoller creates a poller. headers are sent with every status query.
func NewPoller(transport domain.Transport, clock domain.Clock, logger domain.Logger, headers map[string]string) *Poller {
	return &Poller{
		transport: transport,
		clock:     clock,
		logger:    logger,
		headers:   headers,
	}
}

// Poll queries handle at a fixed interval until the operation succeeds,
// fails, or policy.Timeout elapses. The deadline is checked before each
// query, so no request is issued once the budget is spent. Transport errors
// are returned as-is; only non-terminal statuses lead to another attempt.
func (p *Poller) Poll(ctx context.Context, handle domain.OperationHandle, policy domain.PollPolicy) (*domain.OperationResult, error) {
	if handle == "" {
		return nil, apperrors.NewMissingOperationHandleError("operation location is empty")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	opID := handle.ID()
	start := p.clock.Now()
	for attempt := 1; ; attempt++ {
		elapsed := p.clock.Now().Sub(start)
		if elapsed > policy.Timeout {
			return nil, apperrors.NewTimeoutError(
				fmt.Sprintf("operation timed out after %.2f seconds", policy.Timeout.Seconds()), opID)
		}

		resp, err := p.transport.Do(ctx, http.MethodGet, string(handle), p.headers, nil)
		if err != nil {
			return nil, err
		}

		var state operationState
		if err := json.Unmarshal(resp.Body, &state); err != nil {
			return nil, apperrors.NewTransportError("failed to decode operation status", resp.StatusCode, err)
		}
		if state.Status == nil {
			return nil, apperrors.NewTransportError("operation status response has no status field", resp.StatusCode, nil)
		}

		switch status := domain.ParseOperationStatus(*state.Status); status {
		case domain.OperationSucceeded:
			p.logger.Info("Request result is ready",
				"operation_id", opID, "elapsed_sec", fmt.Sprintf("%.2f", elapsed.Seconds()), "attempts", attempt)
			return &domain.OperationResult{ID: state.ID, Status: status, Payload: resp.Body}, nil
		case domain.OperationFailed:
			appErr := apperrors.NewOperationFailedError("request failed", resp.Body)
			appErr.Details = opID
			p.logger.Error("Request failed", appErr, "operation_id", opID, "reason", string(resp.Body))
			return nil, appErr
		}

		p.logger.Info("Request in progress", "operation_id", opID, "status", *state.Status, "attempt", attempt)
		if err := p.clock.Sleep(ctx, policy.Interval); err != nil {
			return nil, fmt.Errorf("poll %s: %w", opID, err)
		}
	}
}
