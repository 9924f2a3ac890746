package stdio_test

import (
	"bytes"
	"errors"
	"io"
	"syscall"
	"testing"

	"lesiw.io/stdio"
)

func TestPutcBuffers(t *testing.T) {
	f, h := openMock(t, "", "w")

	for i := range stdio.BufferSize {
		if got, want := f.Putc('a'+i%26), 'a'+i%26; got != want {
			t.Fatalf("Putc() = %d, want %d", got, want)
		}
	}
	if got := h.Writes; got != 0 {
		t.Errorf("writes with full buffer = %d, want 0", got)
	}
	f.Putc('!')
	if got, want := h.Writes, 1; got != want {
		t.Errorf("writes after overflow = %d, want %d", got, want)
	}
	if got, want := len(h.Data), stdio.BufferSize; got != want {
		t.Errorf("data length = %d, want %d", got, want)
	}
	if got, want := f.Tell(), int64(stdio.BufferSize+1); got != want {
		t.Errorf("Tell() = %d, want %d", got, want)
	}
}

func TestPutcReturnsByte(t *testing.T) {
	f, _ := openMock(t, "", "w")

	if got, want := f.Putc(0x1ff), 0xff; got != want {
		t.Errorf("Putc(0x1ff) = %#x, want %#x", got, want)
	}
}

func TestWriteBlockLarge(t *testing.T) {
	f, h := openMock(t, "", "w")
	data := bytes.Repeat([]byte("0123456789"), 1000)

	if got, want := f.WriteBlock(data, 10), 1000; got != want {
		t.Fatalf("WriteBlock() = %d, want %d", got, want)
	}
	if got, want := h.Writes, 2; got != want {
		t.Errorf("writes = %d, want %d", got, want)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.Data, data) {
		t.Errorf("data mismatch: got %d bytes, want %d", len(h.Data), len(data))
	}
}

func TestWriteBlockPartialElement(t *testing.T) {
	f, h := openMock(t, "", "w")

	if got, want := f.WriteBlock([]byte("abcdefg"), 4), 1; got != want {
		t.Errorf("WriteBlock() = %d, want %d", got, want)
	}
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := string(h.Data), "abcdefg"; got != want {
		t.Errorf("data = %q, want %q", got, want)
	}
}

func TestFlushShortWrites(t *testing.T) {
	f, h := openMock(t, "", "w")
	h.MaxWrite = 100
	data := bytes.Repeat([]byte("z"), 1000)

	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if got, want := h.Writes, 10; got != want {
		t.Errorf("writes = %d, want %d", got, want)
	}
	if !bytes.Equal(h.Data, data) {
		t.Error("data mismatch after short writes")
	}
}

func TestFlushZeroWrite(t *testing.T) {
	f, h := openMock(t, "", "w")
	h.MaxWrite = -1

	f.Putc('x')
	if err := f.Flush(); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Flush() error = %v, want io.ErrShortWrite", err)
	}
	if got, want := h.Writes, 1; got != want {
		t.Errorf("writes = %d, want %d", got, want)
	}
}

func TestWriteErrorIsSticky(t *testing.T) {
	f, h := openMock(t, "", "w")
	h.WriteErr = syscall.ENOSPC

	f.Putc('x')
	if err := f.Flush(); !errors.Is(err, syscall.ENOSPC) {
		t.Errorf("Flush() error = %v, want ENOSPC", err)
	}

	h.WriteErr = nil
	if got := f.Putc('y'); got != stdio.EOF {
		t.Errorf("Putc() after error = %d, want EOF", got)
	}
	if got := f.WriteBlock([]byte("abc"), 1); got != 0 {
		t.Errorf("WriteBlock() after error = %d, want 0", got)
	}
	if err := f.Flush(); !errors.Is(err, syscall.ENOSPC) {
		t.Errorf("Flush() after error = %v, want ENOSPC", err)
	}
	if err := f.Close(); !errors.Is(err, syscall.ENOSPC) {
		t.Errorf("Close() after error = %v, want ENOSPC", err)
	}
	if got, want := h.Writes, 1; got != want {
		t.Errorf("writes = %d, want %d", got, want)
	}
	if got := len(h.Data); got != 0 {
		t.Errorf("data length = %d, want 0", got)
	}
}

func TestWriteBlockFailsOnDrain(t *testing.T) {
	f, h := openMock(t, "", "w")
	h.WriteErr = syscall.EIO

	data := make([]byte, stdio.BufferSize+1)
	if got := f.WriteBlock(data, 1); got != 0 {
		t.Errorf("WriteBlock() = %d, want 0", got)
	}
	if !errors.Is(f.Err(), syscall.EIO) {
		t.Errorf("Err() = %v, want EIO", f.Err())
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, syscall.EIO) {
		t.Errorf("Write() error = %v, want EIO", err)
	}
}

func TestFlushWithoutWrite(t *testing.T) {
	f, h := openMock(t, "abc", "r")

	if err := f.Flush(); !errors.Is(err, stdio.ErrNotWriting) {
		t.Errorf("Flush() error = %v, want ErrNotWriting", err)
	}
	if !errors.Is(f.Err(), stdio.ErrNotWriting) {
		t.Errorf("Err() = %v, want ErrNotWriting", f.Err())
	}
	if got := h.Writes; got != 0 {
		t.Errorf("writes = %d, want 0", got)
	}
}

func TestFlushTwice(t *testing.T) {
	f, h := openMock(t, "", "w")

	f.Putc('x')
	if err := f.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := f.Flush(); err != nil {
		t.Errorf("second Flush() error = %v, want nil", err)
	}
	if got, want := h.Writes, 1; got != want {
		t.Errorf("writes = %d, want %d", got, want)
	}
}

func TestWriteAfterReadRepositions(t *testing.T) {
	f, h := openMock(t, "abcdef", "r+")

	if got, want := f.Getc(), int('a'); got != want {
		t.Fatalf("Getc() = %q, want %q", got, want)
	}
	if got, want := f.Putc('X'), int('X'); got != want {
		t.Fatalf("Putc() = %q, want %q", got, want)
	}
	if got, want := f.Tell(), int64(2); got != want {
		t.Errorf("Tell() = %d, want %d", got, want)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := string(h.Data), "aXcdef"; got != want {
		t.Errorf("data = %q, want %q", got, want)
	}
}

func TestAppendWritesAtEnd(t *testing.T) {
	f, h := openMock(t, "abc", "a+")

	if err := f.Rewind(); err != nil {
		t.Fatal(err)
	}
	if got, want := f.Getc(), int('a'); got != want {
		t.Fatalf("Getc() = %q, want %q", got, want)
	}
	if _, err := f.Write([]byte("de")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := string(h.Data), "abcde"; got != want {
		t.Errorf("data = %q, want %q", got, want)
	}
}

func TestWriteByte(t *testing.T) {
	f, h := openMock(t, "", "w")

	if err := f.WriteByte('q'); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := string(h.Data), "q"; got != want {
		t.Errorf("data = %q, want %q", got, want)
	}
}

func TestWriteEmpty(t *testing.T) {
	f, h := openMock(t, "", "w")

	if n, err := f.Write(nil); n != 0 || err != nil {
		t.Errorf("Write(nil) = %d, %v, want 0, nil", n, err)
	}
	if got := f.WriteBlock(nil, 1); got != 0 {
		t.Errorf("WriteBlock(nil) = %d, want 0", got)
	}
	if got := h.Writes; got != 0 {
		t.Errorf("writes = %d, want 0", got)
	}
}
