package stdio

import (
	"errors"
	"fmt"
	"strings"
)

// Error reports a process stream whose command exited unsuccessfully.
//
// It is returned by [File.Close], [Read], and [Do].
// [File.Pclose] returns the exit status directly instead.
type Error struct {
	// Command is the command text passed to Popen.
	Command string

	// Err is the underlying error, if any.
	Err error

	// Code is the exit status.
	Code int
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Command != "" {
		sb.WriteString(e.Command + ": ")
	}
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	} else {
		sb.WriteString(fmt.Sprintf("exit status %d", e.Code))
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether err represents a command the command
// interpreter could not find: exit status 127 from a POSIX shell or 9009
// from cmd.exe.
//
// NotFound uses errors.As to probe the error chain for an *Error.
// If no *Error exists in the chain, NotFound returns false.
func NotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == 127 || e.Code == 9009
}
