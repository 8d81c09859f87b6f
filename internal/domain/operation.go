package domain

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "doc-intel-pipeline/pkg/errors"
)

// OperationHandle is the opaque locator of an in-flight remote job.
type OperationHandle string

// ID returns the last path segment of the handle without its query string.
func (h OperationHandle) ID() string {
	s := string(h)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// OperationStatus is the lifecycle state of a remote operation.
type OperationStatus string

const (
	OperationRunning   OperationStatus = "Running"
	OperationSucceeded OperationStatus = "Succeeded"
	OperationFailed    OperationStatus = "Failed"
)

// ParseOperationStatus maps a service status string onto OperationStatus.
// Anything that is not succeeded or failed, including values the service may
// add later, is treated as still running.
func ParseOperationStatus(s string) OperationStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "succeeded":
		return OperationSucceeded
	case "failed":
		return OperationFailed
	default:
		return OperationRunning
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationSucceeded || s == OperationFailed
}

// OperationKind selects the remote verb a submission targets.
type OperationKind string

const (
	KindAnalyze  OperationKind = "analyze"
	KindClassify OperationKind = "classify"
)

// SupportsBatch reports whether the kind accepts multi-input (directory) bodies.
func (k OperationKind) SupportsBatch() bool {
	return k == KindAnalyze
}

// Submission is the outcome of a successful job-creation request.
type Submission struct {
	Handle     OperationHandle
	RequestID  string
	StatusCode int
}

// OperationResult is the final payload of a succeeded operation.
type OperationResult struct {
	ID      string
	Status  OperationStatus
	Payload json.RawMessage
}

// PollPolicy bounds how long and how often an operation is polled.
type PollPolicy struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultPollPolicy matches the service's typical single-document latency.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Timeout: 120 * time.Second, Interval: 2 * time.Second}
}

// PollPolicyFromSeconds builds a policy from whole seconds.
func PollPolicyFromSeconds(timeoutSeconds, intervalSeconds int) PollPolicy {
	return PollPolicy{
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		Interval: time.Duration(intervalSeconds) * time.Second,
	}
}

// Validate requires a positive interval strictly below the timeout.
func (p PollPolicy) Validate() error {
	if p.Timeout <= 0 {
		return apperrors.NewInvalidInputError("poll timeout must be positive", p.Timeout.String())
	}
	if p.Interval <= 0 {
		return apperrors.NewInvalidInputError("poll interval must be positive", p.Interval.String())
	}
	if p.Interval >= p.Timeout {
		return apperrors.NewInvalidInputError(
			"poll interval must be shorter than the timeout",
			"interval="+p.Interval.String()+" timeout="+p.Timeout.String(),
		)
	}
	return nil
}
