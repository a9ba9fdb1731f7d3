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
	ErrorTypeInvalidInput   ErrorType = "invalid_input"
	ErrorTypeCapacity       ErrorType = "insufficient_capacity"
	ErrorTypeNoMessage      ErrorType = "no_hidden_message"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
)

// StegError is a structured error type with context.
type StegError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Method      string
	Recoverable bool
}

// Error implements the error interface.
func (e *StegError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Method != "" {
		parts = append(parts, "method:"+e.Method)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *StegError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison. Two StegErrors match when both type and
// code agree; a target without a code matches on type alone.
func (e *StegError) Is(target error) bool {
	var t *StegError
	if errors.As(target, &t) {
		if t.Code == "" {
			return e.Type == t.Type
		}
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *StegError) WithContext(key string, value interface{}) *StegError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithMethod records which hiding method produced the error.
func (e *StegError) WithMethod(method string) *StegError {
	e.Method = method

	return e
}

// Sentinels for errors.Is checks against a whole category.
var (
	ErrInvalidInput         = &StegError{Type: ErrorTypeInvalidInput}
	ErrInsufficientCapacity = &StegError{Type: ErrorTypeCapacity}
	ErrNoHiddenMessage      = &StegError{Type: ErrorTypeNoMessage}
	ErrAuthentication       = &StegError{Type: ErrorTypeAuthentication}
	ErrConfig               = &StegError{Type: ErrorTypeConfig}
)

// Common error codes.
const (
	ErrCodeEmptyCover      = "ERR_EMPTY_COVER"
	ErrCodeEmptyPayload    = "ERR_EMPTY_PAYLOAD"
	ErrCodeEmptyText       = "ERR_EMPTY_TEXT"
	ErrCodeEmptyPassword   = "ERR_EMPTY_PASSWORD"
	ErrCodeUnencodable     = "ERR_UNENCODABLE_PAYLOAD"
	ErrCodeUnknownMethod   = "ERR_UNKNOWN_METHOD"
	ErrCodeCapacity        = "ERR_INSUFFICIENT_CAPACITY"
	ErrCodeNoDelimiters    = "ERR_NO_DELIMITERS"
	ErrCodeDecryptFailed   = "ERR_DECRYPT_FAILED"
	ErrCodeEncryptFailed   = "ERR_ENCRYPT_FAILED"
	ErrCodeWordListInvalid = "ERR_WORDLIST_INVALID"
	ErrCodeFileNotFound    = "ERR_FILE_NOT_FOUND"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeInternalError   = "ERR_INTERNAL"
)

// NewInvalidInputError creates an invalid input error.
func NewInvalidInputError(code, message string) *StegError {
	return &StegError{
		Type:        ErrorTypeInvalidInput,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewCapacityError reports that a cover text cannot carry the whole payload.
func NewCapacityError(needed, available int) *StegError {
	return (&StegError{
		Type:        ErrorTypeCapacity,
		Code:        ErrCodeCapacity,
		Message:     fmt.Sprintf("cover text can carry %d bits, payload needs %d", available, needed),
		Recoverable: true,
	}).WithContext("needed_bits", needed).WithContext("available_bits", available)
}

// NewNoHiddenMessageError reports that the structural markers of a method are absent.
func NewNoHiddenMessageError(message string) *StegError {
	return &StegError{
		Type:        ErrorTypeNoMessage,
		Code:        ErrCodeNoDelimiters,
		Message:     message,
		Recoverable: true,
	}
}

// NewAuthenticationError creates a decryption failure error. The cause is kept
// for logging but never distinguishes a wrong password from tampered input.
func NewAuthenticationError(cause error) *StegError {
	return &StegError{
		Type:        ErrorTypeAuthentication,
		Code:        ErrCodeDecryptFailed,
		Message:     "wrong password or corrupted message",
		Cause:       cause,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *StegError {
	return &StegError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *StegError {
	return &StegError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *StegError {
	return &StegError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsInvalidInput checks if an error is an invalid input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInsufficientCapacity checks if an error reports a too small cover text.
func IsInsufficientCapacity(err error) bool {
	return errors.Is(err, ErrInsufficientCapacity)
}

// IsNoHiddenMessage checks if an error reports missing markers.
func IsNoHiddenMessage(err error) bool {
	return errors.Is(err, ErrNoHiddenMessage)
}

// IsAuthentication checks if an error is a decryption failure.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsConfig checks if an error comes from configuration loading.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// TypeOf returns the category of the outermost StegError in the chain, or
// ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var se *StegError
	if errors.As(err, &se) {
		return se.Type
	}
	return ErrorTypeInternal
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var se *StegError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// ErrorHandler provides centralized error handling.
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

// Handle logs an error at a level matching its category.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var se *StegError
	if !errors.As(err, &se) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch se.Type {
	case ErrorTypeInvalidInput, ErrorTypeCapacity, ErrorTypeNoMessage:
		h.logger.Warn(ctx, err, "Request rejected",
			"type", se.Type,
			"code", se.Code,
			"method", se.Method)
	case ErrorTypeAuthentication:
		h.logger.Warn(ctx, err, "Decryption failed",
			"type", se.Type,
			"code", se.Code)
	default:
		fields := []interface{}{
			"type", se.Type,
			"code", se.Code,
			"method", se.Method,
			"root_cause", GetRootCause(err).Error(),
		}
		for k, v := range se.Context {
			fields = append(fields, k, v)
		}
		if IsRecoverable(err) {
			h.logger.Warn(ctx, err, "Recoverable error occurred", fields...)
			return
		}
		h.logger.Error(ctx, err, "Error occurred", fields...)
	}
}
