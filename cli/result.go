package cli

import (
	"errors"
	"fmt"
)

// CommandError signals a command failure with a specific exit code.
// Commands return it after writing their own report to stderr, so main only
// has to set the exit status.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("exit status %d", e.exitCode)
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ExitCode maps the error returned by a command to a process exit code:
// 0 for nil, the code carried by a CommandError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.exitCode
	}
	return 1
}
