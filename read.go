package stdio

import (
	"errors"
	"io"
)

// Getc reads one byte and returns it as an int in the range 0 to 255.
// At end of stream or on error Getc returns [EOF]; use [File.Eof] and
// [File.Err] to tell them apart.
//
// If end of stream or an error was already recorded, Getc returns EOF
// without reading from the Handle.
func (f *File) Getc() int {
	if f.err != nil || f.eof {
		return EOF
	}
	if !f.toRead() || !f.fill() {
		return EOF
	}
	c := f.buf[f.off]
	f.off++
	f.pos++
	f.last = opRead
	return int(c)
}

// ReadBlock reads len(p) bytes into p and returns the number of whole
// elements of the given size that were read.
// Fewer elements are returned at end of stream.
// If an error is recorded during the read, ReadBlock returns 0.
func (f *File) ReadBlock(p []byte, size int) int {
	if size <= 0 || f.err != nil {
		return 0
	}
	if !f.toRead() {
		return 0
	}
	n := 0
	for n < len(p) && !f.eof && f.fill() {
		k := copy(p[n:], f.buf[f.off:f.size])
		f.off += k
		f.pos += int64(k)
		n += k
	}
	if f.err != nil {
		return 0
	}
	f.last = opRead
	return n / size
}

// Read implements [io.Reader].
//
// Unlike ReadBlock, Read returns as soon as some bytes are available,
// reading from the Handle at most once.
func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, f.err
	}
	if f.err != nil {
		return 0, f.err
	}
	if f.eof {
		return 0, io.EOF
	}
	if !f.toRead() || !f.fill() {
		return 0, f.readErr()
	}
	n := copy(p, f.buf[f.off:f.size])
	f.off += n
	f.pos += int64(n)
	f.last = opRead
	return n, nil
}

// ReadByte implements [io.ByteReader].
func (f *File) ReadByte() (byte, error) {
	c := f.Getc()
	if c == EOF {
		return 0, f.readErr()
	}
	return byte(c), nil
}

func (f *File) readErr() error {
	if f.err != nil {
		return f.err
	}
	return io.EOF
}

// toRead switches f to reading. Pending writes are drained first.
func (f *File) toRead() bool {
	if f.last != opWrite {
		return true
	}
	if f.drain() != nil {
		return false
	}
	f.last = opRead
	return true
}

// fill reads from the Handle once if the buffer is exhausted.
// It reports whether unread bytes are available.
func (f *File) fill() bool {
	if f.off < f.size {
		return true
	}
	f.reset()
	n, err := f.h.Read(f.buf[:])
	if n > 0 {
		f.size = n
		return true
	}
	if err == nil || errors.Is(err, io.EOF) {
		f.eof = true
	} else {
		f.fail(err)
	}
	return false
}
