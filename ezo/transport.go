package ezo

import "io"

// Transport is the low-level byte channel to the bus.
// This abstraction allows for testing with mock implementations.
type Transport interface {
	io.ReadWriteCloser

	// Bind selects which addressed device both stream directions talk to.
	Bind(addr int) error
}
