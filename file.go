package stdio

import (
	"context"
	"errors"
	"io"

	"golang.org/x/term"
	"lesiw.io/fs"
)

type lastOp int

const (
	opNone lastOp = iota
	opRead
	opWrite
)

// File is a buffered stream over a [Handle].
//
// A File is not safe for concurrent use.
// Callers must serialize every operation on one File.
//
// Errors and end of stream are sticky.
// Once [File.Err] is non-nil every read and write fails without reaching
// the Handle. End of stream is cleared only by [File.Seek].
type File struct {
	h    Handle
	name string
	mode Mode

	// pos is the offset last reported by the Handle, advanced as bytes
	// are delivered to the caller or acknowledged by the Handle.
	pos int64

	// While reading, buf[off:size] is read-ahead not yet delivered.
	// While writing, buf[:size] is pending and off == size.
	buf  [BufferSize]byte
	size int
	off  int
	last lastOp

	eof bool
	err error

	proc   Process
	closed bool
}

// Open opens the named file with the given mode string and returns a
// buffered File.
//
// The mode is one of "r", "r+", "w", "w+", "a", or "a+".
// An unrecognized mode fails before the System is consulted.
// Files opened for appending are positioned at end of file.
//
// On failure Open returns a nil File and a *fs.PathError.
// No Handle is leaked.
func Open(
	ctx context.Context, sys System, name, mode string,
) (*File, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	traceOpen(name, m)
	h, err := sys.Open(ctx, name, m)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	f := &File{h: h, name: name, mode: m}
	if err := f.probe(); err != nil {
		_ = h.Close() // Best effort.
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f, nil
}

// probe records the starting offset and whether it is already at end of
// file. The Handle is left at the starting offset.
func (f *File) probe() error {
	whence := io.SeekCurrent
	if f.mode.Append() {
		whence = io.SeekEnd
	}
	cur, err := f.h.Seek(0, whence)
	if err != nil {
		return err
	}
	end, err := f.h.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end != cur {
		if _, err := f.h.Seek(cur, io.SeekStart); err != nil {
			return err
		}
	}
	f.pos = cur
	f.eof = cur == end
	return nil
}

// NewFile returns a buffered File over an already open Handle.
//
// The File takes ownership of h. If h cannot seek, as with pipes and
// terminals, the File starts at offset 0.
func NewFile(h Handle, name string, mode Mode) *File {
	f := &File{h: h, name: name, mode: mode}
	if pos, err := h.Seek(0, io.SeekCurrent); err == nil {
		f.pos = pos
	}
	return f
}

// Close flushes pending writes and releases the Handle.
//
// The Handle is released even when the flush fails.
// For a process stream Close waits for the child like [File.Pclose]
// and returns an *Error if it exited with a non-zero status.
//
// Closing a File twice returns [ErrClosed].
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	if f.proc != nil {
		code, err := f.Pclose()
		if err != nil {
			return err
		}
		if code != 0 {
			return &Error{Command: f.name, Code: code}
		}
		return nil
	}
	var err error
	if f.last == opWrite {
		err = f.Flush()
	}
	err = errors.Join(err, f.h.Close())
	f.release()
	return err
}

// release marks f closed. Every later operation fails with ErrClosed.
func (f *File) release() {
	f.closed = true
	f.reset()
	if f.err == nil {
		f.err = ErrClosed
	}
}

// reset empties the buffer.
func (f *File) reset() {
	clear(f.buf[:f.size])
	f.size = 0
	f.off = 0
}

func (f *File) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Fd returns the raw descriptor or handle of the underlying Handle.
func (f *File) Fd() uintptr { return f.h.Fd() }

// Name returns the name passed to Open, or the command passed to Popen.
func (f *File) Name() string { return f.name }

func (f *File) String() string { return f.name }

// Mode returns the mode f was opened with.
func (f *File) Mode() Mode { return f.mode }

// Eof reports whether a read has observed end of stream.
func (f *File) Eof() bool { return f.eof }

// Err returns the sticky error, or nil if no operation on f has failed.
func (f *File) Err() error { return f.err }

// IsTerminal reports whether f refers to a terminal.
func (f *File) IsTerminal() bool {
	if f.closed {
		return false
	}
	return term.IsTerminal(int(f.h.Fd()))
}
