package fwdmcp

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
)

func TestMCPError_Error(t *testing.T) {
	err := &MCPError{Code: ErrCodeChannelNotFound, Message: "Channel 'x' not found"}
	if got := err.Error(); got != "channel_not_found: Channel 'x' not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewAPIUnavailableError(t *testing.T) {
	err := NewAPIUnavailableError("http://127.0.0.1:7070", errors.New("connection refused"))
	if err.Code != ErrCodeAPIUnavailable || !err.RetryRecommended {
		t.Errorf("Unexpected error: %+v", err)
	}
	if err.Context["error"] != "connection refused" {
		t.Errorf("cause missing from context: %v", err.Context)
	}

	if nilCause := NewAPIUnavailableError("http://x", nil); nilCause.Context["error"] != nil {
		t.Errorf("Expected no cause, got %v", nilCause.Context["error"])
	}
}

func TestNewChannelNotFoundError(t *testing.T) {
	err := NewChannelNotFoundError("orders")
	if err.RetryRecommended {
		t.Error("Retry should not be recommended")
	}
	if len(err.SuggestedActions) == 0 || err.SuggestedActions[0].Action != "list_channels" {
		t.Errorf("Expected list_channels suggestion, got %+v", err.SuggestedActions)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		ctx   map[string]interface{}
		want  string
		retry bool
	}{
		{"api not found", &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND"}, map[string]interface{}{"channel": "orders"}, ErrCodeChannelNotFound, false},
		{"invalid term", &APIError{Status: http.StatusBadRequest, Code: "INVALID_TERM", Message: "bad"}, nil, ErrCodeInvalidTerm, false},
		{"export failed", &APIError{Status: http.StatusBadGateway, Code: "EXPORT_FAILED", Message: "s3 put failed"}, nil, ErrCodeExportFailed, true},
		{"not ready", &APIError{Status: http.StatusServiceUnavailable, Code: "NOT_READY", Message: "Exporter not available"}, nil, ErrCodeNotReady, false},
		{"refused", errors.New("dial tcp: connect: connection refused"), nil, ErrCodeAPIUnavailable, true},
		{"no host", errors.New("dial tcp: lookup nowhere: no such host"), nil, ErrCodeAPIUnavailable, true},
		{"timeout", errors.New("Client.Timeout exceeded while awaiting headers"), nil, ErrCodeTimeout, true},
		{"deadline", fmt.Errorf("wrapped: %w", errors.New("context deadline exceeded")), nil, ErrCodeTimeout, true},
		{"other api error", &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "boom"}, nil, ErrCodeInternal, true},
		{"unknown", errors.New("something odd"), nil, ErrCodeInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, "http://127.0.0.1:7070", tt.ctx)
			if got.Code != tt.want {
				t.Errorf("Code = %s, want %s", got.Code, tt.want)
			}
			if got.RetryRecommended != tt.retry {
				t.Errorf("RetryRecommended = %v, want %v", got.RetryRecommended, tt.retry)
			}
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	orig := NewInvalidInputError("channel", "", "required")
	if got := ClassifyError(errors.Wrap(orig, "query"), "", nil); got != orig {
		t.Errorf("Expected the wrapped MCPError back, got %+v", got)
	}
	if ClassifyError(nil, "", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
