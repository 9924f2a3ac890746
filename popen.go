package stdio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Popen runs command through the System's command interpreter and
// returns a File connected to it by a pipe.
//
// With mode "r" the File reads the command's standard output.
// With mode "w" the File writes the command's standard input.
// Any other mode fails before the System is consulted.
//
// The File must be released with [File.Pclose] or [File.Close], which
// wait for the command to exit.
func Popen(
	ctx context.Context, sys System, command, mode string,
) (*File, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if m != ModeRead && m != ModeWrite {
		return nil, fmt.Errorf("%w: %q for process stream", ErrMode, mode)
	}
	tracePopen(Envs(ctx), command, m)
	h, p, err := sys.Spawn(ctx, command, m)
	if err != nil {
		return nil, fmt.Errorf("popen %q: %w", command, err)
	}
	return &File{h: h, name: command, mode: m, proc: p}, nil
}

// Pclose flushes pending writes, closes the pipe, and waits for the
// command to exit.
//
// Pclose returns the command's exit status. A non-zero status is not an
// error. Pclose fails with -1 and an error if the flush, the close, or the
// wait fails; the File is released regardless.
//
// Pclose returns [ErrNotProcess] for a File not created by Popen and
// [ErrClosed] if the File was already released.
func (f *File) Pclose() (int, error) {
	if f.closed {
		return -1, ErrClosed
	}
	if f.proc == nil {
		return -1, ErrNotProcess
	}
	var err error
	if f.last == opWrite {
		err = f.Flush()
	}
	err = errors.Join(err, f.h.Close())
	f.release()
	code, werr := f.proc.Wait()
	if err = errors.Join(err, werr); err != nil {
		return -1, err
	}
	return code, nil
}

// Pid returns the process identifier of the command run by Popen,
// or -1 if f is not a process stream.
func (f *File) Pid() int {
	if f.proc == nil {
		return -1
	}
	return f.proc.Pid()
}

// Read runs a command and returns its output as a string.
// All trailing whitespace is stripped from the output.
// For exact output, use [Popen] and [io.ReadAll].
//
// If the command exits with a non-zero status, the error is an *Error.
func Read(ctx context.Context, sys System, command string) (string, error) {
	f, err := Popen(ctx, sys, command, "r")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return strings.TrimRightFunc(buf.String(), unicode.IsSpace), err
}

// Do runs a command for its side effects, discarding its output.
// Only the error status is returned.
func Do(ctx context.Context, sys System, command string) error {
	f, err := Popen(ctx, sys, command, "r")
	if err != nil {
		return err
	}
	_, err = io.Copy(io.Discard, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
