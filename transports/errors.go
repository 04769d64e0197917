// Package transports provides the byte-level channels the ezo driver runs
// over: the Linux I2C character device, a serial port for UART-mode circuits,
// and a mock for tests.
package transports

import (
	"errors"
	"fmt"
)

// ErrNotAddressable is returned by point-to-point transports, which have no
// bus address selection.
var ErrNotAddressable = errors.New("transport is point-to-point: no bus addressing")

// BindError reports a failed device-address selection.
type BindError struct {
	Addr int

	// Partial marks the half-bound state: the read stream was re-bound to
	// Addr but the write stream was not, leaving the two directions
	// pointing at different devices.
	Partial bool

	Err error
}

func (e *BindError) Error() string {
	if e.Partial {
		return fmt.Sprintf("bind address %d: write stream failed after read stream was re-bound: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("bind address %d: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// DevicePath returns the device node for an I2C adapter number.
func DevicePath(bus int) string {
	return fmt.Sprintf("/dev/i2c-%d", bus)
}
