package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent an invalid request
	ErrorCodeInvalidRequest = "INVALID_REQUEST"

	// ErrorCodeRequestTooLarge indicates the request body exceeded the size limit
	ErrorCodeRequestTooLarge = "REQUEST_TOO_LARGE"

	// ErrorCodeUnprocessable indicates a well-formed document that cannot be summarized or scored
	ErrorCodeUnprocessable = "UNPROCESSABLE_DOCUMENT"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"

	// ErrorCodeResourceNotFound indicates a requested resource was not found
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// ErrorCodeTimeout indicates the request deadline passed
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeBadGateway indicates a failure in an upstream service
	ErrorCodeBadGateway = "BAD_GATEWAY"
)

// Error response codes
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeResourceError   = "RESOURCE_ERROR"
	StatusCodeDatabaseError   = "DATABASE_ERROR"
	StatusCodeTimeoutError    = "TIMEOUT_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeExternalError   = "EXTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// writeErrorResponse writes a structured error response to the HTTP response writer
func writeErrorResponse(w http.ResponseWriter, status int, code, message string, err error) {
	// Create the error response
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	// Add details from the error if available
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
		var appErr *errortypes.AppError
		if errors.As(err, &appErr) {
			for k, v := range appErr.Fields {
				errResp.Details[k] = v
			}
		}

		// Log the error with structured context
		slog.Warn(fmt.Sprintf("API Error (%s)", code),
			"status_code", status,
			"error_code", code,
			"client_message", message,
			"error", err)
	}

	// Set content type and status code
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode and send the response
	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// Error handler functions for common HTTP error scenarios

// HandleBadRequest handles 400 Bad Request errors
func HandleBadRequest(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadRequest, ErrorCodeInvalidRequest, message, err)
}

// HandleUnprocessable handles 422 Unprocessable Entity errors
func HandleUnprocessable(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusUnprocessableEntity, ErrorCodeUnprocessable, message, err)
}

// HandleNotFound handles 404 Not Found errors
func HandleNotFound(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusNotFound, ErrorCodeResourceNotFound, message, err)
}

// HandleTimeout handles 504 Gateway Timeout errors
func HandleTimeout(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusGatewayTimeout, ErrorCodeTimeout, message, err)
}

// HandleInternalError handles 500 Internal Server Error errors
func HandleInternalError(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusInternalServerError, ErrorCodeInternalError, message, err)
}

// HandleBadGateway handles 502 Bad Gateway errors
func HandleBadGateway(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadGateway, ErrorCodeBadGateway, message, err)
}

// ErrorWithStatus creates an error with an HTTP status code
type ErrorWithStatus struct {
	err        error
	statusCode int
	errorCode  string
	message    string
}

// NewErrorWithStatus creates a new error with HTTP status code
func NewErrorWithStatus(err error, status int, code, message string) *ErrorWithStatus {
	return &ErrorWithStatus{
		err:        err,
		statusCode: status,
		errorCode:  code,
		message:    message,
	}
}

// Error returns the error message
func (e *ErrorWithStatus) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error
func (e *ErrorWithStatus) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status code
func (e *ErrorWithStatus) StatusCode() int {
	return e.statusCode
}

// ErrorCode returns the application error code
func (e *ErrorWithStatus) ErrorCode() string {
	return e.errorCode
}

// Message returns the client-friendly message
func (e *ErrorWithStatus) Message() string {
	return e.message
}

// HandleError handles any error, inspecting its type to determine the appropriate HTTP response
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's our specialized error type
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		writeErrorResponse(w, statusErr.StatusCode(), statusErr.ErrorCode(),
			statusErr.Message(), statusErr.Unwrap())
		return
	}

	// Structural document errors are valid requests the pipeline cannot serve
	switch {
	case errors.Is(err, errortypes.ErrEmptyDocument):
		HandleUnprocessable(w, "No sentence survived preprocessing", err)
		return
	case errors.Is(err, errortypes.ErrInvalidClusterCount):
		HandleUnprocessable(w, "Invalid cluster count", err)
		return
	case errors.Is(err, errortypes.ErrLengthMismatch):
		HandleUnprocessable(w, "References and candidates differ in length", err)
		return
	}

	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeValidation:
		HandleBadRequest(w, "Invalid request parameters", err)
	case errortypes.ErrorTypeResource:
		HandleNotFound(w, "Resource not found", err)
	case errortypes.ErrorTypeTimeout:
		HandleTimeout(w, "Request timed out", err)
	case errortypes.ErrorTypeExternal:
		HandleBadGateway(w, "Downstream service error", err)
	default:
		// Default to internal server error for unknown error types
		HandleInternalError(w, "An unexpected error occurred", err)
	}
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	// Log the error
	slog.Error("API Error", "error", err, "status", status)

	// Check if it's a known error type
	errorResponse := errorToResponse(err)

	// Set the HTTP status code
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Write the error response as JSON
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		slog.Error("Error encoding JSON error response", "error", err, "original_error_message", errorResponse.Message, "status", status)
	}
}

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	var code string
	var details map[string]interface{}
	message := err.Error()

	// Check if it's an AppError
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		// Set details from the app error
		details = appErr.Fields

		// Set the error code based on the error type
		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			code = StatusCodeValidationError
		case errortypes.ErrorTypeResource:
			code = StatusCodeResourceError
		case errortypes.ErrorTypeDatabase:
			code = StatusCodeDatabaseError
		case errortypes.ErrorTypeTimeout:
			code = StatusCodeTimeoutError
		case errortypes.ErrorTypeInternal:
			code = StatusCodeInternalError
		case errortypes.ErrorTypeExternal:
			code = StatusCodeExternalError
		case errortypes.ErrorTypeConfig:
			code = StatusCodeConfigError
		default:
			code = StatusCodeUnknownError
		}
	} else {
		// Generic error, use unknown error code
		code = StatusCodeUnknownError
	}

	// Return the standardized error response
	return ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Details: details,
	}
}
