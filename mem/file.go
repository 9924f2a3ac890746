package mem

import (
	"context"
	"errors"
	"io"
	"os"

	"lesiw.io/fs"
	"lesiw.io/stdio"
)

// fileHandle holds a private copy of a file's content.
// The copy is written back to the filesystem on Close.
type fileHandle struct {
	ctx  context.Context
	fsys fs.FS
	name string
	mode stdio.Mode
	fd   uintptr

	data   []byte
	off    int64
	dirty  bool
	closed bool
}

func openFile(
	ctx context.Context, s *System, name string, mode stdio.Mode,
) (*fileHandle, error) {
	h := &fileHandle{
		ctx:  ctx,
		fsys: s.fsys,
		name: name,
		mode: mode,
	}
	if !mode.Truncate() {
		data, err := readFile(ctx, s.fsys, name)
		switch {
		case err == nil:
			h.data = data
		case errors.Is(err, os.ErrNotExist) && mode.Create():
			h.dirty = true
		default:
			return nil, err
		}
	} else {
		h.dirty = true
	}
	if h.dirty {
		// Create or truncate now, as open(2) would.
		if err := h.sync(); err != nil {
			return nil, err
		}
	}
	h.fd = s.nextFd()
	return h, nil
}

func readFile(ctx context.Context, fsys fs.FS, name string) ([]byte, error) {
	f, err := fs.Open(ctx, fsys, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *fileHandle) sync() error {
	w, err := fs.Create(h.ctx, h.fsys, h.name)
	if err != nil {
		return err
	}
	_, err = w.Write(h.data)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		h.dirty = false
	}
	return err
}

func (h *fileHandle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	if !h.mode.Readable() {
		return 0, errBadFd
	}
	if len(p) == 0 {
		return 0, nil
	}
	if h.off >= int64(len(h.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.data[h.off:])
	h.off += int64(n)
	return n, nil
}

func (h *fileHandle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	if !h.mode.Writable() {
		return 0, errBadFd
	}
	if h.mode.Append() {
		h.off = int64(len(h.data))
	}
	end := h.off + int64(len(p))
	if end > int64(len(h.data)) {
		h.data = append(h.data, make([]byte, end-int64(len(h.data)))...)
	}
	copy(h.data[h.off:], p)
	h.off = end
	h.dirty = true
	return len(p), nil
}

func (h *fileHandle) Seek(offset int64, whence int) (int64, error) {
	if h.closed {
		return 0, os.ErrClosed
	}
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.off
	case io.SeekEnd:
		base = int64(len(h.data))
	default:
		return 0, errWhere
	}
	if base+offset < 0 {
		return 0, errWhere
	}
	h.off = base + offset
	return h.off, nil
}

func (h *fileHandle) Close() error {
	if h.closed {
		return os.ErrClosed
	}
	h.closed = true
	if h.dirty {
		return h.sync()
	}
	return nil
}

func (h *fileHandle) Fd() uintptr { return h.fd }
