package fwdmcp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MCPError is returned from tool handlers. Besides the message it tells
// the agent what probably went wrong and which tool call may fix it.
type MCPError struct {
	Code             string                 `json:"code"`
	Message          string                 `json:"message"`
	Diagnosis        string                 `json:"diagnosis,omitempty"`
	SuggestedActions []SuggestedAction      `json:"suggested_actions,omitempty"`
	RetryRecommended bool                   `json:"retry_recommended"`
	Context          map[string]interface{} `json:"context,omitempty"`
}

// SuggestedAction names a tool to call next, or just gives a hint
type SuggestedAction struct {
	Action string                 `json:"action,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
	Hint   string                 `json:"hint,omitempty"`
}

func (e *MCPError) Error() string {
	return e.Code + ": " + e.Message
}

const (
	ErrCodeAPIUnavailable  = "api_unavailable"
	ErrCodeChannelNotFound = "channel_not_found"
	ErrCodeInvalidInput    = "invalid_input"
	ErrCodeInvalidTerm     = "invalid_term"
	ErrCodeBindFailed      = "bind_failed"
	ErrCodeNotReady        = "not_ready"
	ErrCodeExportFailed    = "export_failed"
	ErrCodeTimeout         = "timeout"
	ErrCodeInternal        = "internal_error"
)

// NewAPIUnavailableError creates an error when the REST API is not reachable
func NewAPIUnavailableError(apiURL string, cause error) *MCPError {
	ctx := map[string]interface{}{"api_url": apiURL}
	if cause != nil {
		ctx["error"] = cause.Error()
	}
	return &MCPError{
		Code:      ErrCodeAPIUnavailable,
		Message:   fmt.Sprintf("Cannot connect to logfwd API at %s", apiURL),
		Diagnosis: "logfwd may not be running, or was started without --api",
		SuggestedActions: []SuggestedAction{
			{Hint: "Start logfwd with the API enabled: logfwd listen --api"},
			{Hint: "Or point the bridge at the right address: logfwd mcp --api-url http://host:port"},
		},
		RetryRecommended: true,
		Context:          ctx,
	}
}

// NewChannelNotFoundError creates an error for an unknown channel key
func NewChannelNotFoundError(channel string) *MCPError {
	return &MCPError{
		Code:      ErrCodeChannelNotFound,
		Message:   fmt.Sprintf("Channel '%s' not found", channel),
		Diagnosis: "No event has been received for this application and sender yet, or the key is misspelled",
		SuggestedActions: []SuggestedAction{
			{
				Action: "list_channels",
				Hint:   "List the channels logfwd has created",
			},
		},
		RetryRecommended: false,
		Context: map[string]interface{}{
			"channel": channel,
		},
	}
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field, value, requirement string) *MCPError {
	return &MCPError{
		Code:      ErrCodeInvalidInput,
		Message:   fmt.Sprintf("Invalid value for '%s': %s", field, value),
		Diagnosis: requirement,
		SuggestedActions: []SuggestedAction{
			{
				Hint: fmt.Sprintf("Provide a valid value for '%s': %s", field, requirement),
			},
		},
		RetryRecommended: false,
		Context: map[string]interface{}{
			"field":       field,
			"value":       value,
			"requirement": requirement,
		},
	}
}

// NewInvalidTermError creates an error for a search term the filter rejected
func NewInvalidTermError(message string) *MCPError {
	return &MCPError{
		Code:      ErrCodeInvalidTerm,
		Message:   message,
		Diagnosis: "A regex term did not compile",
		SuggestedActions: []SuggestedAction{
			{
				Action: "query_events",
				Params: map[string]interface{}{"regex": false},
				Hint:   "Retry with plain text terms, or fix the expression",
			},
		},
		RetryRecommended: false,
	}
}

// NewBindFailedError creates an error when no listener address could be bound
func NewBindFailedError(addresses []string, message string) *MCPError {
	return &MCPError{
		Code:      ErrCodeBindFailed,
		Message:   "No listener could be started",
		Diagnosis: message,
		SuggestedActions: []SuggestedAction{
			{
				Action: "list_listeners",
				Hint:   "Check which addresses are currently bound",
			},
			{
				Action: "restart_listeners",
				Params: map[string]interface{}{"addresses": []string{"udp://0.0.0.0:7072"}},
				Hint:   "Retry with a free port",
			},
		},
		RetryRecommended: false,
		Context: map[string]interface{}{
			"addresses": addresses,
		},
	}
}

// NewExportFailedError creates an error for a failed channel export
func NewExportFailedError(channel, destination, message string) *MCPError {
	retry := !strings.Contains(strings.ToLower(message), "no events")
	return &MCPError{
		Code:      ErrCodeExportFailed,
		Message:   fmt.Sprintf("Export of '%s' failed", channel),
		Diagnosis: message,
		SuggestedActions: []SuggestedAction{
			{
				Action: "query_events",
				Params: map[string]interface{}{"channel": channel},
				Hint:   "Check the channel has buffered events",
			},
		},
		RetryRecommended: retry,
		Context: map[string]interface{}{
			"channel":     channel,
			"destination": destination,
		},
	}
}

// ClassifyError maps a client error to a structured MCPError. Errors from the
// API are classified by their code; transport errors by message.
func ClassifyError(err error, apiURL string, context map[string]interface{}) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	channel, _ := context["channel"].(string)
	destination, _ := context["destination"].(string)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "NOT_FOUND":
			return NewChannelNotFoundError(channel)
		case "INVALID_TERM":
			return NewInvalidTermError(apiErr.Message)
		case "EXPORT_FAILED":
			return NewExportFailedError(channel, destination, apiErr.Message)
		case "NOT_READY":
			return &MCPError{
				Code:             ErrCodeNotReady,
				Message:          apiErr.Message,
				Diagnosis:        "The logfwd instance does not provide this feature",
				RetryRecommended: false,
				Context:          context,
			}
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return NewAPIUnavailableError(apiURL, err)
	}

	out := &MCPError{
		Code:             ErrCodeInternal,
		Message:          err.Error(),
		Diagnosis:        "An unexpected error occurred",
		RetryRecommended: true,
		Context:          context,
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		out.Code, out.Diagnosis = ErrCodeTimeout, "logfwd did not answer in time"
	}
	return out
}
