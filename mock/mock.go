// Package mock provides a System implementation for testing that tracks
// invocations and injects faults.
//
// Unlike the mem package, mock does not simulate a filesystem or commands.
// Every Open and Spawn is recorded in the Calls slice, including the mode
// and environment, and is answered with a scriptable [Handle].
// Tests can inspect Calls using cmp.Diff or direct comparison.
//
// Files are registered by name with SetFile. Opening an unregistered name
// fails with os.ErrNotExist unless the mode creates files, in which case
// an empty Handle is registered.
//
//	s := new(mock.System)
//	s.SetFile("data.txt", &mock.Handle{Data: []byte("hello")})
//	s.SetFile("broken", &mock.Handle{ReadErr: syscall.EIO})
//
// Process streams are queued using Return with optional argument patterns.
// The command text is split into words and matched from most to least
// specific. When the queue is exhausted, the last response repeats with a
// fresh copy of its Handle.
//
//	s.Return(&mock.Handle{Data: []byte("Linux\n")}, 0, "uname", "-s")
//	s.Return(&mock.Handle{}, 127) // Default for all commands
//
// For complex conditional behavior based on arguments, use Do to register
// custom handlers:
//
//	s.Do(func(_ context.Context, arg ...string) (*mock.Handle, int, error) {
//	    if len(arg) < 2 {
//	        return nil, 2, nil
//	    }
//	    return &mock.Handle{Data: []byte("Hello, " + arg[1])}, 0, nil
//	}, "greet")
//
// Commands that match nothing succeed with no output.
package mock

import (
	"context"
	"os"
	"sync"

	"lesiw.io/stdio"
	"lesiw.io/stdio/internal/sh"
)

// Call represents a single Open or Spawn captured by the mock System.
type Call struct {
	Op   string // "open" or "spawn"
	Name string // file name or command text
	Args []string
	Mode stdio.Mode
	Env  map[string]string
}

type handlerFunc = func(context.Context, ...string) (*Handle, int, error)

type mockResponse struct {
	args  []string
	queue []response
	used  bool
}

type response struct {
	h    *Handle
	code int
}

type mockHandler struct {
	args []string
	fn   handlerFunc
}

// System is a mock implementation of stdio.System that tracks invocations
// and allows queuing responses.
type System struct {
	mu        sync.Mutex
	Calls     []Call
	files     map[string]*Handle
	responses []mockResponse
	handlers  []mockHandler
	pid       int
}

var _ stdio.System = (*System)(nil)

// SetFile registers h as the Handle returned by Open for name.
func (s *System) SetFile(name string, h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string]*Handle)
	}
	s.files[name] = h
}

// File returns the Handle registered for name, or nil.
func (s *System) File(name string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name]
}

// Open implements stdio.System.
func (s *System) Open(
	ctx context.Context, name string, mode stdio.Mode,
) (stdio.Handle, error) {
	s.record(Call{
		Op:   "open",
		Name: name,
		Mode: mode,
		Env:  stdio.Envs(ctx),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.files[name]
	switch {
	case !ok && !mode.Create():
		return nil, os.ErrNotExist
	case !ok:
		h = &Handle{}
		if s.files == nil {
			s.files = make(map[string]*Handle)
		}
		s.files[name] = h
	}
	if h.OpenErr != nil {
		return nil, h.OpenErr
	}
	h.open(mode)
	return h, nil
}

// Return adds a response to the queue with optional argument matching.
// When Spawn is called, responses are matched from most to least specific.
// After the queue is exhausted, the last response repeats indefinitely;
// repeats receive a fresh copy of h.
//
// Return is implemented as a special case of Do.
func (s *System) Return(h *Handle, code int, arg ...string) {
	s.mu.Lock()
	argCopy := append([]string(nil), arg...)
	for i := range s.responses {
		if argsEqual(s.responses[i].args, argCopy) {
			s.responses[i].queue = append(
				s.responses[i].queue, response{h, code},
			)
			s.mu.Unlock()
			return
		}
	}
	s.responses = append(s.responses, mockResponse{
		args:  argCopy,
		queue: []response{{h, code}},
	})
	s.mu.Unlock()

	s.Do(s.makeQueueHandler(argCopy), arg...)
}

func (s *System) makeQueueHandler(arg []string) handlerFunc {
	return func(context.Context, ...string) (*Handle, int, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.responses {
			resp := &s.responses[i]
			if !argsEqual(resp.args, arg) {
				continue
			}
			next := resp.queue[0]
			if len(resp.queue) > 1 {
				resp.queue = resp.queue[1:]
				resp.used = false
				return next.h, next.code, nil
			}
			if !resp.used {
				resp.used = true
				return next.h, next.code, nil
			}
			return next.h.clone(), next.code, nil
		}
		return &Handle{}, 0, nil
	}
}

// Do registers a custom command handler with optional argument matching.
// The handler receives the context and the words of the command and
// returns the Handle for the parent's end of the pipe and the exit status
// reported by Wait. A non-nil error fails the Spawn.
//
// If no args are provided, the handler becomes the default for ALL
// commands.
func (s *System) Do(fn handlerFunc, arg ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.handlers {
		if argsEqual(s.handlers[i].args, arg) {
			s.handlers[i].fn = fn
			return
		}
	}

	s.handlers = append(s.handlers, mockHandler{
		args: append([]string(nil), arg...),
		fn:   fn,
	})
}

// Spawn implements stdio.System.
// All commands are routed through handlers registered via Do or Return.
func (s *System) Spawn(
	ctx context.Context, command string, mode stdio.Mode,
) (stdio.Handle, stdio.Process, error) {
	args := sh.Fields(command)
	s.record(Call{
		Op:   "spawn",
		Name: command,
		Args: args,
		Mode: mode,
		Env:  stdio.Envs(ctx),
	})
	if mode != stdio.ModeRead && mode != stdio.ModeWrite {
		return nil, nil, stdio.ErrMode
	}

	s.mu.Lock()
	var best *mockHandler
	for i := range s.handlers {
		h := &s.handlers[i]
		if argsMatch(args, h.args) &&
			(best == nil || len(h.args) > len(best.args)) {
			best = h
		}
	}
	s.pid++
	pid := s.pid
	s.mu.Unlock()

	h, code := &Handle{}, 0
	if best != nil {
		var err error
		if h, code, err = best.fn(ctx, args...); err != nil {
			return nil, nil, err
		}
	}
	if h == nil {
		h = &Handle{}
	}
	h.open(mode)
	h.pipe = true
	return h, &Process{pid: pid, code: code}, nil
}

func (s *System) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, c)
}

// Calls returns invocations tracked by sys, or nil if sys is not a
// mock.System. Systems that wrap another System and expose it through an
// Unwrap method are unwrapped automatically.
//
// With no arguments, returns all invocations.
// With arguments, returns only spawns whose words begin with the pattern.
func Calls(sys stdio.System, pattern ...string) []Call {
	for {
		u, ok := sys.(interface{ Unwrap() stdio.System })
		if !ok {
			break
		}
		sys = u.Unwrap()
	}
	s, ok := sys.(*System)
	if !ok {
		return nil
	}

	s.mu.Lock()
	calls := append([]Call{}, s.Calls...)
	s.mu.Unlock()

	if len(pattern) == 0 {
		return calls
	}
	var filtered []Call
	for _, call := range calls {
		if call.Op == "spawn" && argsMatch(call.Args, pattern) {
			filtered = append(filtered, call)
		}
	}
	return filtered
}

// argsMatch checks if actual args match the pattern.
// Empty pattern matches all commands.
func argsMatch(actual, pattern []string) bool {
	if len(actual) < len(pattern) {
		return false
	}
	for i, p := range pattern {
		if actual[i] != p {
			return false
		}
	}
	return true
}

// argsEqual checks if two argument patterns are equal.
func argsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Process is the child reported by Spawn.
type Process struct {
	pid    int
	code   int
	waited bool
}

// Pid implements stdio.Process.
func (p *Process) Pid() int { return p.pid }

// Wait implements stdio.Process.
func (p *Process) Wait() (int, error) {
	if p.waited {
		return -1, os.ErrProcessDone
	}
	p.waited = true
	return p.code, nil
}
