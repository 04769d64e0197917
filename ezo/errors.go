package ezo

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrBusClosed      = errors.New("bus is closed")
	ErrEmptyFrame     = errors.New("empty response frame: no status byte")
	ErrSleepMode      = errors.New("sleep commands are not supported")
	ErrInvalidAddress = errors.New("invalid device address")
)

// ConnError reports a failure to open or initially bind the bus device node.
// The Bus instance is unusable; callers must retry Open or give up.
type ConnError struct {
	Device string // device node path, if known
	Err    error
}

func (e *ConnError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("cannot open bus device %s: %v", e.Device, e.Err)
	}
	return fmt.Sprintf("cannot open bus device: %v", e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// AddressError reports a rejected address selection. The bus keeps its
// previously recorded address. When Partial is set the read stream was
// re-bound but the write stream was not, so the two directions now point at
// different devices; callers should treat the channel as suspect and reopen.
type AddressError struct {
	Addr    int
	Partial bool
	Err     error
}

func (e *AddressError) Error() string {
	if e.Partial {
		return fmt.Sprintf("select address %d failed: read/write streams desynchronized: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("select address %d failed: %v", e.Addr, e.Err)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// CommError represents a low-level read or write fault on the bus.
type CommError struct {
	Op  string // operation that failed: "read" or "write"
	Err error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("bus %s failed: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// DeviceError is a non-success status reported by the circuit itself.
type DeviceError struct {
	Code byte
}

func (e *DeviceError) Error() string {
	switch e.Code {
	case StatusSyntax:
		return "device error 2: syntax error"
	case StatusPending:
		return "device error 254: still processing"
	case StatusNoData:
		return "device error 255: no data to send"
	}
	return fmt.Sprintf("device error %d", e.Code)
}

// GetDeviceError extracts a DeviceError from an error chain, if present.
func GetDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}

// IsPending returns true if the circuit reported it is still processing the
// last command. Retrying the read after a longer wait usually succeeds.
func IsPending(err error) bool {
	devErr, ok := GetDeviceError(err)
	return ok && devErr.Code == StatusPending
}

// IsNoData returns true if the circuit had no response queued.
func IsNoData(err error) bool {
	devErr, ok := GetDeviceError(err)
	return ok && devErr.Code == StatusNoData
}
