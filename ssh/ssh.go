// Package ssh implements a stdio.System that runs commands over SSH.
//
// Process streams run on the remote host through the local ssh client.
// Environment variables from the context cannot cross the connection, so
// they are rendered as inline assignments in the syntax of the remote
// shell (VAR=value for Unix, set VAR=value& for Windows).
//
// Files are streamed through cat on the remote host and cannot seek.
// Only the modes "r", "w", and "a" are supported, and only on Unix hosts.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"lesiw.io/stdio"
	"lesiw.io/stdio/internal/sh"
	"lesiw.io/stdio/sub"
)

var errSeek = errors.New("ssh: remote file cannot seek")

// System returns a stdio.System that runs commands over SSH.
// The system wraps sys (typically sys.System()) and prefixes every
// command with ssh and the given connection arguments.
//
//	s := ssh.System(sys.System(), "user@host")
//	ctx := stdio.WithEnv(ctx, map[string]string{"FOO": "bar"})
//	out, err := stdio.Read(ctx, s, "printenv FOO")
//	// Runs: ssh user@host 'FOO=bar printenv FOO'
//
// Additional SSH options can be provided:
//
//	s := ssh.System(sys.System(), "-p", "2222", "user@host")
func System(sys stdio.System, args ...string) stdio.System {
	return &system{
		sys:  sys,
		conn: sub.System(sys, append([]string{"ssh"}, args...)...),
	}
}

var testHookOS func() string

type system struct {
	sys  stdio.System
	conn stdio.System
	once sync.Once
	os   string
}

func (s *system) init(ctx context.Context) {
	s.once.Do(func() {
		if h := testHookOS; h != nil {
			s.os = h()
			return
		}
		out, err := stdio.Read(stdio.WithoutEnv(ctx), s.conn, "uname")
		if err != nil {
			s.os = "windows"
			return
		}
		s.os = strings.ToLower(out)
	})
}

func (s *system) Spawn(
	ctx context.Context, command string, mode stdio.Mode,
) (stdio.Handle, stdio.Process, error) {
	s.init(ctx)
	if env := stdio.Envs(ctx); len(env) > 0 {
		command = prefixEnv(s.os, env, command)
		ctx = stdio.WithoutEnv(ctx)
	}
	return s.conn.Spawn(ctx, sh.Quote(command), mode)
}

func (s *system) Open(
	ctx context.Context, name string, mode stdio.Mode,
) (stdio.Handle, error) {
	s.init(ctx)
	if s.os == "windows" {
		return nil, stdio.ErrUnsupported
	}
	q := sh.Quote(name)
	f := &remoteFile{}
	switch mode {
	case stdio.ModeRead:
		f.command = "cat -- " + q
	case stdio.ModeWrite:
		f.command = "cat > " + q
	case stdio.ModeAppend:
		f.command = "cat >> " + q
	default:
		return nil, stdio.ErrUnsupported
	}
	if mode != stdio.ModeWrite {
		size, err := s.size(ctx, q)
		switch {
		case err == nil:
		case mode == stdio.ModeAppend && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
		f.end = size
		if mode == stdio.ModeAppend {
			f.off, f.pos = size, size
		}
	}
	pmode := stdio.ModeWrite
	if mode == stdio.ModeRead {
		pmode = stdio.ModeRead
	}
	var err error
	if f.h, f.p, err = s.Spawn(ctx, f.command, pmode); err != nil {
		return nil, err
	}
	return f, nil
}

// size returns the length of the remote file named by the quoted name.
func (s *system) size(ctx context.Context, name string) (int64, error) {
	out, err := stdio.Read(ctx, s, "wc -c < "+name)
	if err != nil {
		var e *stdio.Error
		if errors.As(err, &e) && !stdio.NotFound(err) {
			return 0, fs.ErrNotExist
		}
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ssh: bad file size %q: %w", out, err)
	}
	return n, nil
}

// Unwrap returns the wrapped System.
func (s *system) Unwrap() stdio.System { return s.sys }

// prefixEnv prepends environment variable syntax to the command for the
// remote operating system.
func prefixEnv(os string, env map[string]string, command string) string {
	if os == "windows" {
		var prefix strings.Builder
		for _, k := range slices.Sorted(maps.Keys(env)) {
			prefix.WriteString("set " + k + "=" + env[k] + "&")
		}
		return prefix.String() + command
	}
	return sh.Line(env, command)
}

// remoteFile is a remote file streamed through a cat process.
//
// The stream itself never moves. Seeking to the stream offset succeeds,
// and a seek to the end reports the file size; reads and writes fail
// until the file is positioned back at the stream offset.
type remoteFile struct {
	command string
	h       stdio.Handle
	p       stdio.Process
	off     int64 // Stream offset.
	pos     int64 // Reported offset.
	end     int64
}

func (f *remoteFile) Read(p []byte) (int, error) {
	if f.pos != f.off {
		return 0, errSeek
	}
	n, err := f.h.Read(p)
	f.off += int64(n)
	f.pos = f.off
	return n, err
}

func (f *remoteFile) Write(p []byte) (int, error) {
	if f.pos != f.off {
		return 0, errSeek
	}
	n, err := f.h.Write(p)
	f.off += int64(n)
	f.pos = f.off
	f.end = max(f.end, f.off)
	return n, err
}

func (f *remoteFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		abs = f.end + offset
	default:
		return 0, errSeek
	}
	if abs != f.off && abs != f.end {
		return 0, errSeek
	}
	f.pos = abs
	return abs, nil
}

func (f *remoteFile) Close() error {
	err := f.h.Close()
	code, werr := f.p.Wait()
	if err = errors.Join(err, werr); err != nil {
		return err
	}
	if code != 0 {
		return &stdio.Error{Command: f.command, Code: code}
	}
	return nil
}

func (f *remoteFile) Fd() uintptr { return f.h.Fd() }
