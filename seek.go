package stdio

import "io"

// Tell returns the logical position of f.
//
// After writes this includes bytes still pending in the buffer.
// After reads it counts bytes delivered to the caller, not bytes read
// ahead from the Handle.
func (f *File) Tell() int64 {
	if f.last == opWrite {
		return f.pos + int64(f.off)
	}
	return f.pos
}

// Seek implements [io.Seeker].
//
// Read-ahead is discarded and pending writes are drained before the
// Handle is moved. An offset relative to [io.SeekCurrent] is taken from
// the logical position reported by Tell.
// A successful Seek clears end of stream.
// If the drain or the Handle's seek fails, the error is recorded as the
// sticky error.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	switch f.last {
	case opRead:
		if whence == io.SeekCurrent {
			offset += f.pos
			whence = io.SeekStart
		}
		f.reset()
	case opWrite:
		if err := f.drain(); err != nil {
			return 0, err
		}
	}
	pos, err := f.h.Seek(offset, whence)
	if err != nil {
		f.fail(err)
		return 0, err
	}
	f.pos = pos
	f.eof = false
	return pos, nil
}

// Rewind seeks to the start of f.
// The sticky error, if any, is kept.
func (f *File) Rewind() error {
	_, err := f.Seek(0, io.SeekStart)
	return err
}
