package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeExpansion  ErrorType = "expansion"
	ErrorTypeConfig     ErrorType = "config"
)

// Common error codes.
const (
	ErrCodeScanIO          = "ERR_SCAN_IO"
	ErrCodeReadSource      = "ERR_READ_SOURCE"
	ErrCodeWriteOutput     = "ERR_WRITE_OUTPUT"
	ErrCodeNotConverged    = "ERR_NOT_CONVERGED"
	ErrCodeInvalidSettings = "ERR_INVALID_SETTINGS"
	ErrCodeConfigInvalid   = "ERR_CONFIG"
)

// ErrNotConverged matches every expansion error raised when a fixpoint was
// not reached within the pass limit.
var ErrNotConverged = &LiquifyError{Type: ErrorTypeExpansion, Code: ErrCodeNotConverged}

// LiquifyError is a structured error type with context.
type LiquifyError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Component string
	FilePath  string
}

// Error implements the error interface.
func (e *LiquifyError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *LiquifyError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *LiquifyError) Is(target error) bool {
	var t *LiquifyError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *LiquifyError) WithContext(key string, value interface{}) *LiquifyError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *LiquifyError) WithFile(filePath string) *LiquifyError {
	e.FilePath = filePath

	return e
}

// WithComponent adds component context.
func (e *LiquifyError) WithComponent(component string) *LiquifyError {
	e.Component = component

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string, cause error) *LiquifyError {
	return &LiquifyError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *LiquifyError {
	return &LiquifyError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewExpansionError creates an expansion error.
func NewExpansionError(code, message string) *LiquifyError {
	return &LiquifyError{
		Type:    ErrorTypeExpansion,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *LiquifyError {
	return &LiquifyError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	var le *LiquifyError
	if errors.As(err, &le) {
		return le.Type == ErrorTypeIO
	}

	return false
}

// Code returns the code of the outermost LiquifyError in the chain, or an
// empty string.
func Code(err error) string {
	var le *LiquifyError
	if errors.As(err, &le) {
		return le.Code
	}

	return ""
}

// ErrorHandler provides centralized error logging.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level chosen from its type. Validation and
// expansion problems are the author's to fix and log as warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var le *LiquifyError
	if !errors.As(err, &le) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch le.Type {
	case ErrorTypeValidation, ErrorTypeExpansion:
		h.logger.Warn(ctx, err, "Source file could not be processed",
			"type", le.Type,
			"code", le.Code,
			"file", le.FilePath)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", le.Type,
			"code", le.Code,
			"file", le.FilePath)
	}
}
