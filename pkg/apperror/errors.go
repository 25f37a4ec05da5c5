package apperror

import (
	"errors"
	"fmt"
)

// Process exit codes, following the sysexits.h conventions where one fits.
const (
	ExitOK          = 0
	ExitUsage       = 64
	ExitDataErr     = 65
	ExitNoInput     = 66
	ExitSoftware    = 70
	ExitIOErr       = 74
	ExitConfig      = 78
	ExitInterrupted = 130
)

// AppError is a fatal error that halts a run and maps to a process exit code.
// Per-record rejections are never AppErrors; see domain.Outcome.
type AppError struct {
	Code     string
	Message  string
	ExitCode int
	Err      error // Wrapped internal error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, exitCode int, err error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Err:      err,
	}
}

// ExitCodeOf returns the exit code for err. Errors that are not AppErrors
// are treated as internal failures.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitSoftware
}

// ---- Input (IN) ----

func ErrMalformedRecord(line int, err error) *AppError {
	return Wrap("IN_001", fmt.Sprintf("Malformed record on line %d", line), ExitDataErr, err)
}

func ErrInputUnavailable(path string, err error) *AppError {
	return Wrap("IN_002", fmt.Sprintf("Cannot open input %q", path), ExitNoInput, err)
}

func ErrInputRead(err error) *AppError {
	return Wrap("IN_003", "Failed reading input", ExitIOErr, err)
}

// ---- Output (OUT, EXP) ----

func ErrOutputUnwritable(err error) *AppError {
	return Wrap("OUT_001", "Failed writing output", ExitIOErr, err)
}

func ErrExportFailed(sink string, err error) *AppError {
	return Wrap("EXP_001", fmt.Sprintf("Snapshot export to %s failed", sink), ExitIOErr, err)
}

// ---- Process (CFG, USE, RUN) ----

func ErrConfig(err error) *AppError {
	return Wrap("CFG_001", "Invalid configuration", ExitConfig, err)
}

func ErrUsage(usage string) *AppError {
	return New("USE_001", usage, ExitUsage)
}

func ErrCancelled(err error) *AppError {
	return Wrap("RUN_001", "Run cancelled", ExitInterrupted, err)
}

// ---- Invariants (INV) ----

// ErrInvariantViolation signals state the transaction rules should make
// unreachable. The run halts rather than write a corrupted snapshot.
func ErrInvariantViolation(err error) *AppError {
	return Wrap("INV_001", "Account invariant violated", ExitSoftware, err)
}
