// Package sub implements a stdio.System that prefixes all spawned commands
// with fixed words.
package sub

import (
	"context"
	"strings"

	"lesiw.io/stdio"
	"lesiw.io/stdio/internal/sh"
)

// System returns a stdio.System that prefixes all spawned commands with
// the given words, using the provided system for execution.
// The prefix words are quoted; the command text is passed through.
// Files are opened by sys unchanged.
func System(sys stdio.System, prefix ...string) stdio.System {
	return &system{sys: sys, prefix: sh.Join(prefix)}
}

type system struct {
	sys    stdio.System
	prefix string
}

func (s *system) Open(
	ctx context.Context, name string, mode stdio.Mode,
) (stdio.Handle, error) {
	return s.sys.Open(ctx, name, mode)
}

func (s *system) Spawn(
	ctx context.Context, command string, mode stdio.Mode,
) (stdio.Handle, stdio.Process, error) {
	if s.prefix != "" && strings.TrimSpace(command) != "" {
		command = s.prefix + " " + command
	}
	return s.sys.Spawn(ctx, command, mode)
}

// Unwrap returns the wrapped System.
func (s *system) Unwrap() stdio.System { return s.sys }
