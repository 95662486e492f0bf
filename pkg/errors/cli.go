package errors

import (
	"fmt"
)

// CommandError wraps a failed cobra command so main can tell usage
// problems apart from pipeline failures.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func NewCommandError(command string, err error) error {
	return &CommandError{Command: command, Err: err}
}
