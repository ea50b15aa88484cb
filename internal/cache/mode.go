package cache

import "fmt"

// Mode controls whether the engine reads and/or writes.
type Mode string

const (
	ModeReadWrite Mode = "read-write"
	ModeRead      Mode = "read"
	ModeWrite     Mode = "write"
	ModeOff       Mode = "off"
)

// ParseMode validates a mode string. The empty string means read-write.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeReadWrite, nil
	case ModeReadWrite, ModeRead, ModeWrite, ModeOff:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown cache mode %q (expected read-write, read, write or off)", s)
}

// CanRead reports whether cached state may be consulted.
func (m Mode) CanRead() bool {
	return m == ModeReadWrite || m == ModeRead
}

// CanWrite reports whether new state may be persisted.
func (m Mode) CanWrite() bool {
	return m == ModeReadWrite || m == ModeWrite
}
