package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a StegError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *StegError {
	if err == nil {
		return nil
	}

	// If it's already a StegError, preserve its properties but update the message
	var se *StegError
	if errors.As(err, &se) {
		return &StegError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       se,
			Context:     se.Context,
			Method:      se.Method,
			Recoverable: se.Recoverable,
		}
	}

	return &StegError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeInvalidInput || errType == ErrorTypeCapacity,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *StegError {
	se := Wrap(err, ErrorTypeIO, code, message)
	if se != nil {
		se.Recoverable = false
	}
	return se
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *StegError {
	se := Wrap(err, ErrorTypeConfig, code, message)
	if se != nil {
		se.Recoverable = false
	}
	return se
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *StegError {
	return Wrap(err, ErrorTypeInternal, code, message)
}

// EnhanceError adds context to an existing error
func EnhanceError(err error, key string, value interface{}) error {
	if err == nil {
		return nil
	}

	var se *StegError
	if errors.As(err, &se) {
		return se.WithContext(key, value)
	}

	return Wrap(err, ErrorTypeInternal, ErrCodeInternalError, err.Error()).WithContext(key, value)
}

// FormatError returns a single line suitable for CLI output.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var se *StegError
	if !errors.As(err, &se) {
		return err.Error()
	}

	switch {
	case HasErrorType(err, ErrorTypeAuthentication):
		return "wrong password or corrupted message"
	case se.Type == ErrorTypeCapacity:
		return fmt.Sprintf("cover text too short: %s", se.Message)
	case se.Type == ErrorTypeNoMessage:
		return fmt.Sprintf("no hidden message found: %s", se.Message)
	}

	if path, ok := missingFile(err); ok {
		if se.Code == ErrCodeFileNotFound {
			return "no such file: " + path
		}
		return fmt.Sprintf("%s: no such file: %s", se.Message, path)
	}

	return se.Error()
}

// missingFile returns the path of the first not-found file error in the chain.
func missingFile(err error) (string, bool) {
	if !HasErrorCode(err, ErrCodeFileNotFound) {
		return "", false
	}
	for _, e := range GetErrorChain(err) {
		if se, ok := e.(*StegError); ok && se.Code == ErrCodeFileNotFound {
			if path, ok := se.Context["path"].(string); ok {
				return path, true
			}
		}
	}
	return "", false
}
