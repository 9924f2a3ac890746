//go:build unix

package sys

import (
	"context"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"lesiw.io/stdio"
)

const shell = "/bin/sh"

func openFlags(mode stdio.Mode) (int, bool) {
	switch mode {
	case stdio.ModeRead:
		return unix.O_RDONLY, true
	case stdio.ModeReadPlus:
		return unix.O_RDWR, true
	case stdio.ModeWrite:
		return unix.O_WRONLY | unix.O_TRUNC | unix.O_CREAT, true
	case stdio.ModeWritePlus:
		return unix.O_RDWR | unix.O_TRUNC | unix.O_CREAT, true
	case stdio.ModeAppend:
		return unix.O_WRONLY | unix.O_APPEND | unix.O_CREAT, true
	case stdio.ModeAppendPlus:
		return unix.O_RDWR | unix.O_APPEND | unix.O_CREAT, true
	}
	return 0, false
}

func openFile(name string, mode stdio.Mode) (stdio.Handle, error) {
	flags, ok := openFlags(mode)
	if !ok {
		return nil, stdio.ErrMode
	}
	// Retry on EINTR without an upper bound, matching Go's standard library.
	for {
		fd, err := unix.Open(name, flags|unix.O_CLOEXEC, 0o644)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &fdHandle{fd: fd}, nil
	}
}

// fdHandle is a stdio.Handle over a POSIX file descriptor.
type fdHandle struct {
	fd int
}

func (h *fdHandle) Read(p []byte) (int, error) {
	if h.fd < 0 {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(h.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (h *fdHandle) Write(p []byte) (int, error) {
	if h.fd < 0 {
		return 0, os.ErrClosed
	}
	for {
		n, err := unix.Write(h.fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (h *fdHandle) Seek(offset int64, whence int) (int64, error) {
	if h.fd < 0 {
		return 0, os.ErrClosed
	}
	return unix.Seek(h.fd, offset, whence)
}

func (h *fdHandle) Close() error {
	if h.fd < 0 {
		return os.ErrClosed
	}
	// close(2) is not retried on EINTR: the descriptor is released either
	// way on every supported kernel.
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}

func (h *fdHandle) Fd() uintptr { return uintptr(h.fd) }

// pipe returns a pipe whose ends are closed on exec.
func pipe() (r, w int, err error) {
	var p [2]int
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	if err := unix.Pipe(p[:]); err != nil {
		return -1, -1, err
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])
	return p[0], p[1], nil
}

func spawn(
	ctx context.Context, command string, mode stdio.Mode, dir string,
) (stdio.Handle, stdio.Process, error) {
	r, w, err := pipe()
	if err != nil {
		return nil, nil, err
	}
	// The child's copy of its end is dup'ed onto stdin or stdout, which
	// clears close-on-exec; the parent's end is closed by exec.
	files := []uintptr{0, 1, 2}
	parent, child := r, w
	if mode == stdio.ModeRead {
		files[1] = uintptr(w)
	} else {
		parent, child = w, r
		files[0] = uintptr(r)
	}
	pid, err := syscall.ForkExec(shell, []string{shell, "-c", command},
		&syscall.ProcAttr{
			Dir:   dir,
			Env:   stdio.Environ(ctx, os.Environ()),
			Files: files,
		},
	)
	_ = unix.Close(child)
	if err != nil {
		_ = unix.Close(parent)
		return nil, nil, err
	}
	return &fdHandle{fd: parent}, &process{pid: pid}, nil
}

// process is a child started by spawn.
type process struct {
	pid    int
	waited bool
}

func (p *process) Pid() int { return p.pid }

func (p *process) Wait() (int, error) {
	if p.waited {
		return -1, os.ErrProcessDone
	}
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(p.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return -1, err
		}
		break
	}
	p.waited = true
	if ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return ws.ExitStatus(), nil
}
