// Package ezo provides a Go driver for Atlas Scientific EZO sensor circuits
// on a shared I2C bus. The host acts as bus master: it writes an ASCII
// command, waits out the circuit's processing delay, then reads a framed
// response carrying a status byte and a text payload.
package ezo

import (
	"strings"
	"time"
)

// Factory defaults for the EZO circuit family.
const (
	DefaultAddress = 99 // factory default of the pH circuit
	DefaultBus     = 1  // newer Raspberry Pi boards; older revisions use bus 0
)

// MaxAddress is the top of the 7-bit bus address range.
const MaxAddress = 127

// DefaultFrameSize is the largest response frame the circuits emit.
const DefaultFrameSize = 31

// Status codes carried in the first non-NUL byte of a response frame.
const (
	StatusOK      byte = 1
	StatusSyntax  byte = 2
	StatusPending byte = 254
	StatusNoData  byte = 255
)

// Processing delays between writing a command and reading its response.
// Reading and calibration commands need the long tier, everything else
// answers within the short one.
const (
	LongDelay  = 1500 * time.Millisecond
	ShortDelay = 500 * time.Millisecond
)

// DelayClass is the processing-delay tier a command falls into.
type DelayClass int

const (
	DelayShort DelayClass = iota
	DelayLong
)

// ClassifyCommand maps a command to its delay tier by its leading token,
// case-insensitively. Sleep commands are rejected up front: the circuit
// powers down on receipt and the driver cannot transparently resume the
// conversation afterwards.
func ClassifyCommand(cmd string) (DelayClass, error) {
	upper := strings.ToUpper(cmd)
	switch {
	case strings.HasPrefix(upper, "SLEEP"):
		return 0, ErrSleepMode
	case strings.HasPrefix(upper, "R"), strings.HasPrefix(upper, "CAL"):
		return DelayLong, nil
	default:
		return DelayShort, nil
	}
}

// DecodeFrame strips NUL padding from a raw response frame, checks the status
// byte and returns the payload. Every payload byte has bit 7 cleared: the
// transport spuriously sets the high bit (a known Raspberry Pi glitch) and it
// carries no information.
func DecodeFrame(raw []byte) ([]byte, error) {
	stripped := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0 {
			stripped = append(stripped, b)
		}
	}
	if len(stripped) == 0 {
		return nil, ErrEmptyFrame
	}
	if code := stripped[0]; code != StatusOK {
		return nil, &DeviceError{Code: code}
	}

	payload := stripped[1:]
	for i := range payload {
		payload[i] &^= 0x80
	}
	return payload, nil
}
