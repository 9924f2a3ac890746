package stdio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lesiw.io/prefix"
	"lesiw.io/stdio/internal/sh"
)

// EOF is returned by [File.Getc] and [File.Putc] at end of stream or on
// error. It is outside the range of byte values.
const EOF = -1

// BufferSize is the capacity of a File's internal buffer.
const BufferSize = 4096

var (
	// Trace receives one line for every Open and Popen.
	Trace io.Writer = io.Discard

	// ShTrace is a Trace destination that writes to stderr with a
	// shell-style "+ " prefix.
	ShTrace = prefix.NewWriter("+ ", stderr)

	stderr io.Writer = os.Stderr
)

// ErrMode is returned for a mode string that is not recognized.
var ErrMode = errors.New("stdio: invalid mode")

// ErrClosed is returned when operating on a file that has been closed.
var ErrClosed = errors.New("stdio: file already closed")

// ErrNotProcess is returned by Pclose for a file not created by Popen.
var ErrNotProcess = errors.New("stdio: not a process stream")

// ErrNotWriting is returned by Flush when the last operation was not a
// write.
var ErrNotWriting = errors.New("stdio: flush without pending write")

// ErrUnsupported is returned by systems that cannot provide an operation
// on the current platform.
var ErrUnsupported = errors.New("stdio: unsupported operation")

func traceOpen(name string, mode Mode) {
	_, _ = fmt.Fprintf(Trace, "open %s %s\n", sh.Quote(name), mode)
}

func tracePopen(env map[string]string, command string, mode Mode) {
	line := strings.TrimRight(sh.Line(env, command), "\n")
	if mode == ModeRead {
		_, _ = fmt.Fprintf(Trace, "%s |\n", line)
	} else {
		_, _ = fmt.Fprintf(Trace, "| %s\n", line)
	}
}
