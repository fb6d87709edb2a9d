package command

import (
	"errors"
	"fmt"
)

// Configuration error codes (E200-E299).
const (
	ErrCodeUnknownKey       = "E201" // key name not known to the key resolver
	ErrCodeUnknownButton    = "E202" // button name outside the fixed set
	ErrCodeInvalidRange     = "E203" // min <= 0 or min > max
	ErrCodeDuplicateTrigger = "E204" // two bindings share a trigger
	ErrCodeInvalidMethod    = "E205" // method is neither Hold nor Toggle
	ErrCodeInvalidType      = "E206" // input type is neither Key nor Button
	ErrCodeEmpty            = "E207" // no bindings at all
)

// ConfigError reports a binding that cannot become a command.
//
// A table is never built from a configuration that produced a ConfigError.
type ConfigError struct {
	// Code identifies the error category.
	Code string

	// Field locates the offending value, e.g. "commands[2].range".
	Field string

	// Message is a human-readable description.
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ConfigErrors flattens err (including errors.Join trees) into the
// ConfigErrors it contains, in order.
func ConfigErrors(err error) []*ConfigError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*ConfigError
		for _, e := range joined.Unwrap() {
			out = append(out, ConfigErrors(e)...)
		}
		return out
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return []*ConfigError{ce}
	}
	return nil
}
