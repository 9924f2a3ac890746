package stdio

import (
	"context"
	"io"
)

// A Handle is an open operating system resource: a file descriptor on
// POSIX hosts or a HANDLE on Windows.
//
// Handles do not buffer. Every call is expected to map to a single system
// call, retried only when the system call is interrupted.
type Handle interface {
	// Read reads up to len(p) bytes.
	// At end of stream Read must return 0, io.EOF.
	// For a process pipe, the writer closing its end is end of stream.
	io.Reader

	// Write writes up to len(p) bytes and reports how many were written.
	// A short write without an error is permitted.
	io.Writer

	// Seek sets the offset for the next Read or Write.
	// Handles that cannot seek, such as pipes, return an error.
	io.Seeker

	// Close releases the resource.
	io.Closer

	// Fd returns the raw descriptor or handle value.
	Fd() uintptr
}

// A Process is a running child spawned by a [System].
type Process interface {
	// Pid returns the process identifier.
	Pid() int

	// Wait blocks until the process exits and returns its exit status.
	// Interrupted waits are retried.
	// Wait must not be called more than once.
	Wait() (int, error)
}

// A System provides the primitives a [File] is built on.
//
// Implementations are provided by sub-packages:
//   - [lesiw.io/stdio/sys] - the host operating system
//   - [lesiw.io/stdio/mem] - in-memory files and commands
//   - [lesiw.io/stdio/mock] - fault injection for tests
//   - [lesiw.io/stdio/sub] - prefixes spawned commands
type System interface {
	// Open opens name with the OS flags that correspond to mode.
	// Relative names are resolved against fs.WorkDir(ctx) when set.
	Open(ctx context.Context, name string, mode Mode) (Handle, error)

	// Spawn runs command through the system's command interpreter.
	// For ModeRead the returned Handle reads the child's standard output;
	// for ModeWrite it writes the child's standard input.
	// No other Mode is accepted.
	//
	// The child's environment is extended with Envs(ctx) and it runs in
	// fs.WorkDir(ctx) when that is an absolute path.
	// The context is not used for cancellation.
	//
	// On failure every pipe end already created is released.
	Spawn(
		ctx context.Context, command string, mode Mode,
	) (Handle, Process, error)
}
