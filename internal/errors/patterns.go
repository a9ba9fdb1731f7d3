package errors

import (
	"errors"
	"io/fs"
)

// FileError wraps a failed filesystem operation on path. A missing file gets
// ERR_FILE_NOT_FOUND so callers can tell it apart from other I/O failures.
func FileError(operation, path string, cause error) *StegError {
	code := ErrCodeInternalError
	message := "failed to " + operation + " file"
	if errors.Is(cause, fs.ErrNotExist) {
		code = ErrCodeFileNotFound
		message = "file not found"
	}

	se := WrapIO(cause, code, message)
	if se == nil {
		return nil
	}
	return se.WithContext("operation", operation).WithContext("path", path)
}

// Error Chain Utilities

// GetRootCause returns the deepest underlying error in the chain
func GetRootCause(err error) error {
	chain := GetErrorChain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// GetErrorChain returns all errors in the chain from outermost to innermost
func GetErrorChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}

// HasErrorCode checks if any error in the chain has the specified code
func HasErrorCode(err error, code string) bool {
	for _, e := range GetErrorChain(err) {
		if se, ok := e.(*StegError); ok && se.Code == code {
			return true
		}
	}
	return false
}

// HasErrorType checks if any error in the chain has the specified type
func HasErrorType(err error, errType ErrorType) bool {
	for _, e := range GetErrorChain(err) {
		if se, ok := e.(*StegError); ok && se.Type == errType {
			return true
		}
	}
	return false
}
