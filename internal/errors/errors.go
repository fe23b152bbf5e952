package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind names an error class of the fix pipeline as shown in the run report.
type Kind string

const (
	KindLinterInvocation Kind = "LinterInvocationError"
	KindParse            Kind = "ParseError"
	KindFileRead         Kind = "FileReadError"
	KindAPI              Kind = "ApiError"
	KindFileWrite        Kind = "FileWriteError"
	KindUnknown          Kind = "UnknownError"
)

// LinterInvocationError is fatal: the linter could not be started or exited
// with a status that is neither "clean" nor "issues found".
type LinterInvocationError struct {
	Linter   string
	ExitCode int
	Output   string
	Err      error
}

func (e *LinterInvocationError) Error() string {
	msg := fmt.Sprintf("linter %q invocation failed", e.Linter)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s. Output: %s", msg, e.Output)
	}
	return msg
}

func (e *LinterInvocationError) Unwrap() error { return e.Err }

// ParseError describes one linter output record that could not be turned into an issue.
type ParseError struct {
	Line int // 1-based record number in the linter output, 0 for whole-document errors
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unparseable linter output at line %d (%q): %v", e.Line, e.Raw, e.Err)
	}
	return fmt.Sprintf("unparseable linter output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileReadError aborts the fix of a single file whose content could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %q: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ApiError aborts the fix of a single file when the completion API call fails.
type ApiError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *ApiError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion request for %q failed with status %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion request for %q failed: %v", e.Path, e.Err)
}

func (e *ApiError) Unwrap() error { return e.Err }

// FileWriteError aborts the fix of a single file when the new content cannot be written.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("failed to write %q: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// KindOf maps err onto the error taxonomy.
func KindOf(err error) Kind {
	var (
		linterErr *LinterInvocationError
		parseErr  *ParseError
		readErr   *FileReadError
		apiErr    *ApiError
		writeErr  *FileWriteError
	)
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &linterErr):
		return KindLinterInvocation
	case stderrors.As(err, &readErr):
		return KindFileRead
	case stderrors.As(err, &apiErr):
		return KindAPI
	case stderrors.As(err, &writeErr):
		return KindFileWrite
	case stderrors.As(err, &parseErr):
		return KindParse
	default:
		return KindUnknown
	}
}

// CommandError carries the process exit code of a failed command up to main.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError creates a new CommandError instance wrapping err.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}
