package stdio

import "fmt"

// Mode is the open mode of a [File].
// A Mode is fixed for the lifetime of a File.
type Mode int

const (
	ModeRead       Mode = iota // "r": read only, must exist
	ModeReadPlus               // "r+": read and write, must exist
	ModeWrite                  // "w": write only, truncate or create
	ModeWritePlus              // "w+": read and write, truncate or create
	ModeAppend                 // "a": write at end, create
	ModeAppendPlus             // "a+": read and write at end, create
)

var modeNames = [...]string{
	ModeRead:       "r",
	ModeReadPlus:   "r+",
	ModeWrite:      "w",
	ModeWritePlus:  "w+",
	ModeAppend:     "a",
	ModeAppendPlus: "a+",
}

// ParseMode maps a mode string to its Mode.
// Any string other than "r", "r+", "w", "w+", "a", or "a+" is rejected
// with an error wrapping [ErrMode].
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMode, s)
}

// String returns the mode string, e.g. "r+".
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Readable reports whether m permits reading.
func (m Mode) Readable() bool {
	switch m {
	case ModeRead, ModeReadPlus, ModeWritePlus, ModeAppendPlus:
		return true
	}
	return false
}

// Writable reports whether m permits writing.
func (m Mode) Writable() bool {
	return m != ModeRead && m.valid()
}

// Append reports whether writes under m always land at end of file.
func (m Mode) Append() bool {
	return m == ModeAppend || m == ModeAppendPlus
}

// Truncate reports whether opening with m discards existing content.
func (m Mode) Truncate() bool {
	return m == ModeWrite || m == ModeWritePlus
}

// Create reports whether opening with m creates a missing file.
func (m Mode) Create() bool {
	return m.Truncate() || m.Append()
}

func (m Mode) valid() bool {
	return m >= ModeRead && m <= ModeAppendPlus
}
