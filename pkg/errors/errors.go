// Package errors classifies failures into a small set of kinds: I/O
// failure, format violation, and argument error. There is no separate
// allocation-failure kind. Warnings are not represented here — they are
// plain log lines, never errors.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrIO       = errors.New("i/o failure")
	ErrFormat   = errors.New("format violation")
	ErrArgument = errors.New("argument error")
)

// Process exit codes: 0 success, 1 I/O failure, 2 argument error.
const (
	ExitOK       = 0
	ExitIO       = 1
	ExitArgument = 2
)

// AppError wraps a sentinel error with a human-readable message and the
// process exit code its caller should use.
type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, ExitCode: exitCode}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), ExitCode: exitCode}
}

// ExitCodeFor maps an error to the process exit code a CLI should return.
// Unrecognized errors are treated as I/O failures, matching the reference
// implementation's behavior of aborting with a diagnostic on any fatal
// condition it did not anticipate.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	if errors.Is(err, ErrArgument) {
		return ExitArgument
	}
	return ExitIO
}
