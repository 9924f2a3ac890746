// Package sys implements a stdio.System over the host operating system.
//
// On POSIX hosts files are descriptors opened with open(2), and process
// streams run the command with /bin/sh -c after fork and exec.
// On Windows files are HANDLEs opened with CreateFile, and process streams
// run the command with cmd.exe /C through CreateProcess.
//
// Both backends present the same behavior to [lesiw.io/stdio.File]:
// reads return io.EOF once the writer of a pipe has gone away, and
// interrupted system calls are retried.
package sys

import (
	"context"
	"path/filepath"

	"lesiw.io/fs"
	"lesiw.io/stdio"
)

// System returns a stdio.System for the local host.
func System() stdio.System { return system{} }

type system struct{}

var _ stdio.System = system{}

func (system) Open(
	ctx context.Context, name string, mode stdio.Mode,
) (stdio.Handle, error) {
	return openFile(resolve(ctx, name), mode)
}

func (system) Spawn(
	ctx context.Context, command string, mode stdio.Mode,
) (stdio.Handle, stdio.Process, error) {
	if mode != stdio.ModeRead && mode != stdio.ModeWrite {
		return nil, nil, stdio.ErrMode
	}
	return spawn(ctx, command, mode, workDir(ctx))
}

// resolve joins relative names with the context's working directory.
func resolve(ctx context.Context, name string) string {
	if dir := fs.WorkDir(ctx); dir != "" && !filepath.IsAbs(name) {
		return filepath.Join(dir, name)
	}
	return name
}

// workDir returns the directory for spawned commands.
// Only absolute paths are used.
func workDir(ctx context.Context) string {
	if dir := fs.WorkDir(ctx); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return ""
}
