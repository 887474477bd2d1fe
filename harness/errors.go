package harness

import (
	"errors"
	"fmt"
)

// ErrUndefinedRatio is returned when a ratio's denominator is zero.
var ErrUndefinedRatio = errors.New("undefined ratio: candidate duration is zero")

// ConfigError reports a malformed run configuration. It is always
// returned before any process is started.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// LaunchError reports that a command's process could not be started.
type LaunchError struct {
	Command string
	Input   string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s (input %s): %v", e.Command, e.Input, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
