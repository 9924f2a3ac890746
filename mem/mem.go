// Package mem provides an in-memory stdio.System for tests and examples.
//
// Files live in a lesiw.io/fs/memfs filesystem. Process streams run a
// small set of built-in commands (echo, cat, tee, tr, true, false, exit)
// in goroutines connected to the stream by an io.Pipe.
//
// # Guarantees
//
// mem.New() makes the following guarantees for consistent testing:
//
//   - Filesystem starts empty (no files or directories)
//   - Unknown commands exit with status 127, as from a POSIX shell
//   - Platform-independent behavior on all hosts
//
// These guarantees mean tests using mem.New() work identically on
// Windows, macOS, and Linux without conditional logic.
package mem

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"lesiw.io/fs"
	"lesiw.io/fs/memfs"
	"lesiw.io/stdio"
)

var (
	errBadFd = errors.New("mem: bad file descriptor")
	errSeek  = errors.New("mem: illegal seek")
	errWhere = errors.New("mem: invalid offset")
)

// System is an in-memory stdio.System.
type System struct {
	fsys fs.FS
	fd   atomic.Uintptr
	pid  atomic.Int64

	mu     sync.Mutex
	stdout io.Writer
}

var _ stdio.System = (*System)(nil)

// New returns a System with an empty filesystem.
func New() *System {
	s := &System{fsys: memfs.New(), stdout: io.Discard}
	s.fd.Store(2)
	s.pid.Store(1)
	return s
}

// FS returns the filesystem backing s.
func (s *System) FS() fs.FS { return s.fsys }

// SetStdout sets where commands started with mode "w" write their output.
// The default is io.Discard.
func (s *System) SetStdout(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stdout = w
}

func (s *System) output() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout
}

func (s *System) nextFd() uintptr { return s.fd.Add(1) }
func (s *System) nextPid() int    { return int(s.pid.Add(1)) }

// Open implements stdio.System.
func (s *System) Open(
	ctx context.Context, name string, mode stdio.Mode,
) (stdio.Handle, error) {
	h, err := openFile(ctx, s, name, mode)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Spawn implements stdio.System.
func (s *System) Spawn(
	ctx context.Context, command string, mode stdio.Mode,
) (stdio.Handle, stdio.Process, error) {
	if mode != stdio.ModeRead && mode != stdio.ModeWrite {
		return nil, nil, stdio.ErrMode
	}
	h, p := spawn(ctx, s, command, mode)
	return h, p, nil
}
