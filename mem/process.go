package mem

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"lesiw.io/stdio"
	"lesiw.io/stdio/internal/sh"
)

// pipeHandle is the parent's end of a command's standard output (r) or
// standard input (w).
type pipeHandle struct {
	r  *io.PipeReader
	w  *io.PipeWriter
	fd uintptr
}

func (h *pipeHandle) Read(p []byte) (int, error) {
	if h.r == nil {
		return 0, errBadFd
	}
	return h.r.Read(p)
}

func (h *pipeHandle) Write(p []byte) (int, error) {
	if h.w == nil {
		return 0, errBadFd
	}
	return h.w.Write(p)
}

func (h *pipeHandle) Seek(int64, int) (int64, error) { return 0, errSeek }

func (h *pipeHandle) Close() error {
	if h.r != nil {
		return h.r.Close()
	}
	return h.w.Close()
}

func (h *pipeHandle) Fd() uintptr { return h.fd }

// process is a built-in command running in its own goroutine.
type process struct {
	pid    int
	g      errgroup.Group
	code   int
	waited bool
}

func (p *process) Pid() int { return p.pid }

func (p *process) Wait() (int, error) {
	if p.waited {
		return -1, os.ErrProcessDone
	}
	p.waited = true
	if err := p.g.Wait(); err != nil {
		return -1, err
	}
	return p.code, nil
}

func spawn(
	ctx context.Context, s *System, command string, mode stdio.Mode,
) (*pipeHandle, *process) {
	c := &cmd{
		ctx:  ctx,
		sys:  s,
		args: expand(stdio.Envs(ctx), sh.Fields(command)),
	}
	pr, pw := io.Pipe()
	h := &pipeHandle{fd: s.nextFd()}
	p := &process{pid: s.nextPid()}
	if mode == stdio.ModeRead {
		h.r = pr
		c.stdin = strings.NewReader("")
		c.stdout = pw
		p.g.Go(func() error {
			p.code = run(c)
			return pw.Close()
		})
	} else {
		h.w = pw
		c.stdin = pr
		c.stdout = s.output()
		p.g.Go(func() error {
			p.code = run(c)
			// Unread input is discarded until the parent closes its end.
			_, _ = io.Copy(io.Discard, pr)
			return pr.Close()
		})
	}
	return h, p
}

// expand replaces words of the form $NAME with values from env.
func expand(env map[string]string, words []string) []string {
	for i, w := range words {
		if name, ok := strings.CutPrefix(w, "$"); ok && name != "" {
			words[i] = env[name]
		}
	}
	return words
}
