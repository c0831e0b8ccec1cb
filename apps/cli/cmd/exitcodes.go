package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for ordercheck CLI
const (
	// ExitSuccess indicates no check failed
	ExitSuccess = 0

	// ExitCheckFailure indicates one or more checks failed
	ExitCheckFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCheckFailure
}
