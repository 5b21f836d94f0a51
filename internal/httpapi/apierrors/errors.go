// Package apierrors defines internal/httpapi's structured JSON error
// envelope, adapted from internal/api/errors's APIError/ErrorResponse
// shape (code, message, request ID, timestamp) and scoped to the codes
// the validation API can actually raise.
package apierrors

import (
	"encoding/json"
	"net/http"
	"time"
)

// Code is one of a small fixed set of API error codes.
type Code string

const (
	CodeValidationError   Code = "VALIDATION_ERROR"
	CodeSqlRejected       Code = "SQL_REJECTED"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError     Code = "INTERNAL_ERROR"
)

// APIError is the JSON body returned on every non-2xx response.
type APIError struct {
	Code      Code        `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse wraps APIError for the JSON body.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// New builds an APIError stamped with the current time.
func New(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// StatusCode maps Code to the HTTP status the handler writes.
func (e *APIError) StatusCode() int {
	switch e.Code {
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeSqlRejected:
		return http.StatusConflict
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Write encodes err as the response body at its mapped status code.
func Write(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	json.NewEncoder(w).Encode(ErrorResponse{Error: *err})
}
