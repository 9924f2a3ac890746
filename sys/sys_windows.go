//go:build windows

package sys

import (
	"context"
	"errors"
	"io"
	"os"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
	"lesiw.io/stdio"
)

type createArgs struct {
	access      uint32
	disposition uint32
}

func createFlags(mode stdio.Mode) (createArgs, bool) {
	switch mode {
	case stdio.ModeRead:
		return createArgs{
			windows.GENERIC_READ, windows.OPEN_EXISTING,
		}, true
	case stdio.ModeReadPlus:
		return createArgs{
			windows.GENERIC_READ | windows.GENERIC_WRITE,
			windows.OPEN_EXISTING,
		}, true
	case stdio.ModeWrite:
		return createArgs{
			windows.GENERIC_WRITE, windows.CREATE_ALWAYS,
		}, true
	case stdio.ModeWritePlus:
		return createArgs{
			windows.GENERIC_READ | windows.GENERIC_WRITE,
			windows.CREATE_ALWAYS,
		}, true
	case stdio.ModeAppend:
		return createArgs{
			windows.FILE_APPEND_DATA, windows.OPEN_ALWAYS,
		}, true
	case stdio.ModeAppendPlus:
		return createArgs{
			windows.FILE_APPEND_DATA | windows.FILE_READ_DATA,
			windows.OPEN_ALWAYS,
		}, true
	}
	return createArgs{}, false
}

func openFile(name string, mode stdio.Mode) (stdio.Handle, error) {
	args, ok := createFlags(mode)
	if !ok {
		return nil, stdio.ErrMode
	}
	path, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		path,
		args.access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		args.disposition,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, err
	}
	return &winHandle{h: h}, nil
}

// winHandle is a stdio.Handle over a Windows HANDLE.
type winHandle struct {
	h      windows.Handle
	pipe   bool
	closed bool
}

func (h *winHandle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		var done uint32
		err := windows.ReadFile(h.h, p, &done, nil)
		if errors.Is(err, windows.ERROR_BROKEN_PIPE) {
			// The child closed its end of the pipe.
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		if done > 0 {
			return int(done), nil
		}
		if !h.pipe {
			return 0, io.EOF
		}
		// A zero-length pipe read is not end of stream.
	}
}

func (h *winHandle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	var done uint32
	err := windows.WriteFile(h.h, p, &done, nil)
	return int(done), err
}

func (h *winHandle) Seek(offset int64, whence int) (int64, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	return windows.Seek(h.h, offset, whence)
}

func (h *winHandle) Close() error {
	if h.closed {
		return os.ErrClosed
	}
	h.closed = true
	return windows.CloseHandle(h.h)
}

func (h *winHandle) Fd() uintptr { return uintptr(h.h) }

func comspec() string {
	if s := os.Getenv("COMSPEC"); s != "" {
		return s
	}
	return `C:\Windows\System32\cmd.exe`
}

func spawn(
	ctx context.Context, command string, mode stdio.Mode, dir string,
) (stdio.Handle, stdio.Process, error) {
	sa := windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(sa))

	var r, w windows.Handle
	if err := windows.CreatePipe(&r, &w, &sa, 0); err != nil {
		return nil, nil, err
	}
	parent, child := r, w
	if mode == stdio.ModeWrite {
		parent, child = w, r
	}
	closeBoth := func() {
		_ = windows.CloseHandle(r)
		_ = windows.CloseHandle(w)
	}
	// Only the child's end may be inherited.
	err := windows.SetHandleInformation(
		parent, windows.HANDLE_FLAG_INHERIT, 0,
	)
	if err != nil {
		closeBoth()
		return nil, nil, err
	}

	si := windows.StartupInfo{Flags: windows.STARTF_USESTDHANDLES}
	si.Cb = uint32(unsafe.Sizeof(si))
	si.StdInput, _ = windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	si.StdOutput, _ = windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	si.StdErr, _ = windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if mode == stdio.ModeRead {
		si.StdOutput = child
	} else {
		si.StdInput = child
	}

	argv0 := comspec()
	cmdline, err := windows.UTF16PtrFromString(
		windows.EscapeArg(argv0) + " /C " + command,
	)
	if err != nil {
		closeBoth()
		return nil, nil, err
	}
	var cwd *uint16
	if dir != "" {
		if cwd, err = windows.UTF16PtrFromString(dir); err != nil {
			closeBoth()
			return nil, nil, err
		}
	}
	env := envBlock(stdio.Environ(ctx, os.Environ()))

	var pi windows.ProcessInformation
	err = windows.CreateProcess(
		nil,
		cmdline,
		nil,
		nil,
		true,
		windows.CREATE_UNICODE_ENVIRONMENT,
		&env[0],
		cwd,
		&si,
		&pi,
	)
	_ = windows.CloseHandle(child)
	if err != nil {
		_ = windows.CloseHandle(parent)
		return nil, nil, err
	}
	_ = windows.CloseHandle(pi.Thread)
	return &winHandle{h: parent, pipe: true},
		&process{h: pi.Process, pid: int(pi.ProcessId)}, nil
}

// envBlock encodes env as a double-NUL terminated UTF-16 block.
func envBlock(env []string) []uint16 {
	var block []uint16
	for _, kv := range env {
		block = append(block, utf16.Encode([]rune(kv))...)
		block = append(block, 0)
	}
	if len(block) == 0 {
		block = append(block, 0)
	}
	return append(block, 0)
}

// process is a child started by spawn.
type process struct {
	h   windows.Handle
	pid int
}

func (p *process) Pid() int { return p.pid }

func (p *process) Wait() (int, error) {
	if p.h == 0 {
		return -1, os.ErrProcessDone
	}
	defer func() {
		_ = windows.CloseHandle(p.h)
		p.h = 0
	}()
	ev, err := windows.WaitForSingleObject(p.h, windows.INFINITE)
	if err != nil {
		return -1, err
	}
	if ev != windows.WAIT_OBJECT_0 {
		return -1, errors.New("sys: unexpected wait result")
	}
	var code uint32
	if err := windows.GetExitCodeProcess(p.h, &code); err != nil {
		return -1, err
	}
	return int(code), nil
}
