package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskriser/taskriser/pkg/api"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		errType api.ErrorType
		want    int
	}{
		{api.ErrorTypeUnauthorized, http.StatusUnauthorized},
		{api.ErrorTypeForbidden, http.StatusForbidden},
		{api.ErrorTypeTooManyRequests, http.StatusTooManyRequests},
		{api.ErrorTypeInvalidRequest, http.StatusBadRequest},
		{api.ErrorTypeConflict, http.StatusConflict},
		{api.ErrorTypeNotFound, http.StatusNotFound},
		{api.ErrorTypeBadGateway, http.StatusBadGateway},
		{api.ErrorTypeServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromError(&api.APIError{Type: tt.errType}); got != tt.want {
			t.Errorf("HTTPStatusFromError(%s) = %d, want %d", tt.errType, got, tt.want)
		}
	}
}

func TestWriteAPIErrorSetsRetryAfter(t *testing.T) {
	apiErr := api.NewTooManyRequestsError("slow down")
	apiErr.RetryAfterSeconds = 42

	rec := httptest.NewRecorder()
	WriteAPIError(rec, apiErr)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Errorf("Retry-After = %q, want 42", got)
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Error.RetryAfterSeconds != 42 {
		t.Errorf("retryAfterSeconds = %d, want 42", resp.Error.RetryAfterSeconds)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var got string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if got == "" {
		t.Fatal("no request ID in context")
	}
	if rec.Header().Get("X-Request-ID") != got {
		t.Error("response header does not carry the request ID")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var got string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "client-supplied-id" {
		t.Errorf("request ID = %q, want client-supplied-id", got)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	handler := Recovery()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Error.Type != api.ErrorTypeServerError {
		t.Errorf("error.type = %q, want server_error", resp.Error.Type)
	}
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewStatusWriter(rec)
	sw.Write([]byte("ok"))

	if sw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want 200", sw.Status())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:1234", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:1234", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
