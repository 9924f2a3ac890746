package mock

import (
	"errors"
	"io"
	"os"
	"slices"

	"lesiw.io/stdio"
)

var errSeek = errors.New("mock: illegal seek")

// Handle is a scriptable stdio.Handle.
//
// Reads and writes share one offset into Data, as with a regular file.
// For a process stream Data is the command's output, or receives its
// input. Fields may be changed between calls to inject faults.
type Handle struct {
	Data []byte

	// OpenErr fails Open for this Handle.
	OpenErr error

	ReadErr  error // returned by every Read
	WriteErr error // returned by every Write
	SeekErr  error // returned by every Seek
	CloseErr error // returned by Close

	// MaxRead and MaxWrite cap the bytes moved per call; zero means no
	// limit. A negative MaxWrite makes every Write report 0 bytes and no
	// error.
	MaxRead  int
	MaxWrite int

	// Descriptor is returned by Fd.
	Descriptor uintptr

	// Calls per method, counted even when the call fails.
	Reads, Writes, Seeks, Closes int

	off    int64
	mode   stdio.Mode
	pipe   bool
	closed bool
}

var _ stdio.Handle = (*Handle)(nil)

func (h *Handle) open(mode stdio.Mode) {
	h.mode = mode
	h.off = 0
	h.closed = false
	if mode.Truncate() {
		h.Data = nil
	}
}

func (h *Handle) clone() *Handle {
	return &Handle{
		Data:       slices.Clone(h.Data),
		OpenErr:    h.OpenErr,
		ReadErr:    h.ReadErr,
		WriteErr:   h.WriteErr,
		SeekErr:    h.SeekErr,
		CloseErr:   h.CloseErr,
		MaxRead:    h.MaxRead,
		MaxWrite:   h.MaxWrite,
		Descriptor: h.Descriptor,
	}
}

func (h *Handle) Read(p []byte) (int, error) {
	h.Reads++
	if h.closed {
		return 0, os.ErrClosed
	}
	if h.ReadErr != nil {
		return 0, h.ReadErr
	}
	if h.off >= int64(len(h.Data)) {
		return 0, io.EOF
	}
	if h.MaxRead > 0 && len(p) > h.MaxRead {
		p = p[:h.MaxRead]
	}
	n := copy(p, h.Data[h.off:])
	h.off += int64(n)
	return n, nil
}

func (h *Handle) Write(p []byte) (int, error) {
	h.Writes++
	if h.closed {
		return 0, os.ErrClosed
	}
	if h.WriteErr != nil {
		return 0, h.WriteErr
	}
	if h.MaxWrite < 0 {
		return 0, nil
	}
	if h.MaxWrite > 0 && len(p) > h.MaxWrite {
		p = p[:h.MaxWrite]
	}
	if h.mode.Append() {
		h.off = int64(len(h.Data))
	}
	if end := h.off + int64(len(p)); end > int64(len(h.Data)) {
		h.Data = append(h.Data, make([]byte, end-int64(len(h.Data)))...)
	}
	n := copy(h.Data[h.off:], p)
	h.off += int64(n)
	return n, nil
}

func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.Seeks++
	if h.closed {
		return 0, os.ErrClosed
	}
	if h.pipe {
		return 0, errSeek
	}
	if h.SeekErr != nil {
		return 0, h.SeekErr
	}
	switch whence {
	case io.SeekCurrent:
		offset += h.off
	case io.SeekEnd:
		offset += int64(len(h.Data))
	}
	if offset < 0 {
		return 0, os.ErrInvalid
	}
	h.off = offset
	return offset, nil
}

func (h *Handle) Close() error {
	h.Closes++
	if h.closed {
		return os.ErrClosed
	}
	h.closed = true
	return h.CloseErr
}

func (h *Handle) Fd() uintptr { return h.Descriptor }

// Offset returns the Handle's own offset, which may run ahead of the
// stream's logical position while reading.
func (h *Handle) Offset() int64 { return h.off }
