package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeUnauthorized    ErrorType = "unauthorized"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeBadGateway      ErrorType = "bad_gateway"
	ErrorTypeServerError     ErrorType = "server_error"
)

// APIError represents a structured API error with type, optional param,
// and a stable client-facing message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`

	// RetryAfterSeconds is set on too_many_requests errors so clients
	// know when the window resets.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`

	// RemainingMinutes is set on account-lockout errors.
	RemainingMinutes int `json:"remainingMinutes,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level
// error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewUnauthorizedError creates an APIError for requests with no usable
// credential, or with an invalid or expired one.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewForbiddenError creates an APIError for requests that carry a valid
// credential but are not permitted, including CSRF mismatches.
func NewForbiddenError(message string) *APIError {
	return &APIError{Type: ErrorTypeForbidden, Message: message}
}

// NewTooManyRequestsError creates an APIError for rate limiting and
// account lockout.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{Type: ErrorTypeTooManyRequests, Message: message}
}

// NewInvalidRequestError creates an APIError for missing or invalid fields.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{Type: ErrorTypeInvalidRequest, Param: param, Message: message}
}

// NewConflictError creates an APIError for duplicate unique fields.
func NewConflictError(message string) *APIError {
	return &APIError{Type: ErrorTypeConflict, Message: message}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// NewBadGatewayError creates an APIError for unreachable upstreams.
func NewBadGatewayError(message string) *APIError {
	return &APIError{Type: ErrorTypeBadGateway, Message: message}
}

// NewServerError creates an APIError for unexpected internal failures.
func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}
