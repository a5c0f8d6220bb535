// Package errortypes provides error types and handling for ClusterSummary.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeResource   ErrorType = "resource"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
)

// Sentinel errors of the summarization pipeline. Wrapped inside AppError,
// they are matched with errors.Is.
var (
	// ErrResourceNotFound means the word vector resource could not be read.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrMalformedVectorLine marks a vector line that was skipped during a load.
	ErrMalformedVectorLine = errors.New("malformed vector line")

	// ErrEmptyDocument means no sentence survived preprocessing.
	ErrEmptyDocument = errors.New("empty document")

	// ErrInvalidClusterCount means the requested cluster count is below one.
	ErrInvalidClusterCount = errors.New("invalid cluster count")

	// ErrLengthMismatch means reference and candidate batches differ in size.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrOutOfVocabulary marks a sentence with no recognized word. It is only
	// reported through diagnostics, never returned by the summarizer.
	ErrOutOfVocabulary = errors.New("out-of-vocabulary sentence")
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// ValidationError creates a new validation error
func ValidationError(err error, message string) *AppError {
	return newAppError(ErrorTypeValidation, err, message)
}

// ConfigError creates a new configuration error
func ConfigError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfig, err, message)
}

// DatabaseError creates a new database error
func DatabaseError(err error, message string) *AppError {
	return newAppError(ErrorTypeDatabase, err, message)
}

// TimeoutError creates a new timeout error
func TimeoutError(err error, message string) *AppError {
	return newAppError(ErrorTypeTimeout, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, err, message)
}

// ExternalError creates a new external error
func ExternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeExternal, err, message)
}

// ResourceNotFoundError reports an unreadable vector resource.
func ResourceNotFoundError(err error, path string) *AppError {
	return newAppError(ErrorTypeResource, fmt.Errorf("%w: %w", ErrResourceNotFound, err), "cannot read vector resource").
		WithField("path", path)
}

// MalformedVectorLineError describes a skipped vector line. It is recoverable.
func MalformedVectorLineError(line int, reason string) *AppError {
	return newAppError(ErrorTypeValidation, fmt.Errorf("%w: line %d: %s", ErrMalformedVectorLine, line, reason), "").
		WithField("line", line)
}

// EmptyDocumentError reports a document where no sentence survived preprocessing.
func EmptyDocumentError(sentences int) *AppError {
	return newAppError(ErrorTypeValidation, ErrEmptyDocument, "no sentence survived preprocessing").
		WithField("sentences", sentences)
}

// InvalidClusterCountError reports a cluster count below one.
func InvalidClusterCountError(k, points int) *AppError {
	return newAppError(ErrorTypeValidation, fmt.Errorf("%w: k=%d", ErrInvalidClusterCount, k), "cannot cluster sentences").
		WithField("k", k).
		WithField("points", points)
}

// LengthMismatchError reports reference and candidate batches of different sizes.
func LengthMismatchError(references, candidates int) *AppError {
	return newAppError(ErrorTypeValidation, fmt.Errorf("%w: %d references, %d candidates", ErrLengthMismatch, references, candidates), "cannot score batch").
		WithField("references", references).
		WithField("candidates", candidates)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		args := []any{
			"type", string(appErr.Type),
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		message := appErr.Message
		if message == "" {
			message = appErr.Err.Error()
		}
		logger.Error(message, args...)
	} else {
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeValidation
	}
	return false
}

// IsResourceError checks if an error is a resource error
func IsResourceError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeResource
	}
	return false
}

// IsDatabaseError checks if an error is a database error
func IsDatabaseError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeDatabase
	}
	return false
}
