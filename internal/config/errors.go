package config

import (
	"errors"
	"fmt"
)

// Load error codes (E001-E099).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Config file not found
	ErrCodeUnsupported = "E003" // Unsupported file extension
	ErrCodeParseFailed = "E004" // Syntax error or unknown field
	ErrCodeSchema      = "E005" // Schema violation
)

// LoadError reports a configuration file that could not be loaded.
type LoadError struct {
	Code    string
	Path    string // file path, if known
	Message string
	Err     error // underlying error (optional)
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// LoadErrors flattens err (including errors.Join trees) into the LoadErrors
// it contains, in order.
func LoadErrors(err error) []*LoadError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*LoadError
		for _, e := range joined.Unwrap() {
			out = append(out, LoadErrors(e)...)
		}
		return out
	}
	var le *LoadError
	if errors.As(err, &le) {
		return []*LoadError{le}
	}
	return nil
}
