package contentunderstanding

import (
	"context"
	"net/http"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

const (
	// OperationLocationHeader carries the handle of an accepted job.
	OperationLocationHeader = "Operation-Location"
	clientRequestIDHeader   = "x-ms-client-request-id"
)

// Submitter issues job-creation requests and extracts the operation handle.
type Submitter struct {
	transport domain.Transport
	logger    domain.Logger
}

// NewSubmitter creates a submitter over transport.
func NewSubmitter(transport domain.Transport, logger domain.Logger) *Submitter {
	return &Submitter{transport: transport, logger: logger}
}

// Submit POSTs body to url.
func (s *Submitter) Submit(
	ctx context.Context,
	url string,
	headers map[string]string,
	body RequestBody,
) (domain.Submission, error) {
	return s.SubmitMethod(ctx, http.MethodPost, url, headers, body)
}

// SubmitMethod sends body with method and requires an Operation-Location
// header on the response, even when the status is 2xx.
func (s *Submitter) SubmitMethod(
	ctx context.Context,
	method string,
	url string,
	headers map[string]string,
	body RequestBody,
) (domain.Submission, error) {
	reqHeaders := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		reqHeaders[k] = v
	}
	if body.ContentType != "" {
		reqHeaders["Content-Type"] = body.ContentType
	}

	resp, err := s.transport.Do(ctx, method, url, reqHeaders, body.Data)
	if err != nil {
		return domain.Submission{}, err
	}

	location := resp.Header.Get(OperationLocationHeader)
	if location == "" {
		return domain.Submission{}, apperrors.NewMissingOperationHandleError(
			"operation location not found in response headers")
	}

	sub := domain.Submission{
		Handle:     domain.OperationHandle(location),
		RequestID:  reqHeaders[clientRequestIDHeader],
		StatusCode: resp.StatusCode,
	}
	s.logger.Debug("Operation accepted", "operation_id", sub.Handle.ID(), "status", resp.StatusCode)
	return sub, nil
}
