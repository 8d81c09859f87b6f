package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "doc-intel-pipeline/pkg/errors"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusTeapot, "nope")

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"success":false,"error":"nope"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteAppError_MapsTypeAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	writeAppError(rr, NewMockHandlerLogger(), "test", apperrors.NewTimeoutError("operation timed out", "op-1"))

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status %d, got %d", http.StatusGatewayTimeout, rr.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Type != "timeout" || body.Details != "op-1" || body.Error != "operation timed out" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteAppError_IncludesFailurePayload(t *testing.T) {
	rr := httptest.NewRecorder()
	failure := apperrors.NewOperationFailedError("request failed", []byte(`{"status":"Failed"}`))
	writeAppError(rr, NewMockHandlerLogger(), "test", failure)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"payload":{"status":"Failed"}`) {
		t.Fatalf("expected payload in body: %s", rr.Body.String())
	}
}

func TestWriteAppError_HidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeAppError(rr, NewMockHandlerLogger(), "test", errors.New("db password leaked"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("expected error text to be hidden: %s", rr.Body.String())
	}
}
