package stdio

import "io"

// Putc buffers the byte c and returns it as an int in the range 0 to 255.
// A full buffer is drained to the Handle first.
// If the drain fails, or an error was already recorded, Putc returns
// [EOF].
func (f *File) Putc(c int) int {
	if f.err != nil {
		return EOF
	}
	if !f.toWrite() {
		return EOF
	}
	if f.size == BufferSize && f.drain() != nil {
		return EOF
	}
	b := byte(c)
	f.buf[f.off] = b
	f.off++
	f.size++
	f.last = opWrite
	return int(b)
}

// WriteBlock buffers len(p) bytes and returns the number of whole
// elements of the given size that were written.
// If any drain fails, WriteBlock returns 0.
func (f *File) WriteBlock(p []byte, size int) int {
	if size <= 0 || f.err != nil {
		return 0
	}
	if !f.toWrite() {
		return 0
	}
	f.last = opWrite
	for n := 0; n < len(p); {
		if f.size == BufferSize && f.drain() != nil {
			return 0
		}
		k := copy(f.buf[f.size:], p[n:])
		f.size += k
		f.off = f.size
		n += k
	}
	return len(p) / size
}

// Write implements [io.Writer].
func (f *File) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, f.err
	}
	if f.WriteBlock(p, 1) == 0 {
		return 0, f.err
	}
	return len(p), nil
}

// WriteByte implements [io.ByteWriter].
func (f *File) WriteByte(c byte) error {
	if f.Putc(int(c)) == EOF {
		return f.err
	}
	return nil
}

// Flush drains pending writes to the Handle.
//
// Flush is only valid directly after a write. Otherwise it records
// [ErrNotWriting] as the sticky error and returns it.
func (f *File) Flush() error {
	if f.err != nil {
		return f.err
	}
	if f.last != opWrite {
		f.fail(ErrNotWriting)
		return f.err
	}
	return f.drain()
}

// drain writes every pending byte, looping over short writes.
// A write that makes no progress or fails records the sticky error.
// No write is attempted once an error is recorded.
func (f *File) drain() error {
	if f.err != nil {
		return f.err
	}
	for done := 0; done < f.size; {
		n, err := f.h.Write(f.buf[done:f.size])
		if n > 0 {
			done += n
			f.pos += int64(n)
		}
		if err != nil {
			f.fail(err)
			return f.err
		}
		if n <= 0 {
			f.fail(io.ErrShortWrite)
			return f.err
		}
	}
	f.reset()
	return nil
}

// toWrite switches f to writing.
// Read-ahead is discarded and the Handle is moved back to the logical
// position so new bytes land where Tell reports.
func (f *File) toWrite() bool {
	if f.last != opRead {
		return true
	}
	if f.off < f.size {
		if _, err := f.h.Seek(f.pos, io.SeekStart); err != nil {
			f.fail(err)
			return false
		}
	}
	f.reset()
	f.last = opNone
	return true
}
