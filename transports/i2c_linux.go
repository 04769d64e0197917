//go:build linux

package transports

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// I2C_SLAVE from linux/i2c-dev.h: binds an open descriptor to one device
// address.
const i2cSlave = 0x0703

// I2CConfig holds configuration for opening an I2C devfs transport.
type I2CConfig struct {
	// Bus is the adapter number, the N in /dev/i2c-N.
	Bus int
}

// I2CDev talks to one addressed device through the Linux I2C character
// device. Two descriptors are held on the same adapter, one per direction,
// mirroring the half-duplex conversation the circuits expect; Bind keeps both
// pointed at the same device.
type I2CDev struct {
	readFD  int
	writeFD int
	path    string
}

// OpenI2C opens the adapter's device node once per direction.
func OpenI2C(cfg I2CConfig) (*I2CDev, error) {
	path := DevicePath(cfg.Bus)

	readFD, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	writeFD, err := unix.Open(path, unix.O_WRONLY, 0)
	if err != nil {
		unix.Close(readFD)
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &I2CDev{readFD: readFD, writeFD: writeFD, path: path}, nil
}

// Bind selects the device address both descriptors talk to. The two ioctls
// are not transactional: when the second fails the descriptors are left
// pointing at different devices and the returned BindError has Partial set.
func (d *I2CDev) Bind(addr int) error {
	if err := unix.IoctlSetInt(d.readFD, i2cSlave, addr); err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	if err := unix.IoctlSetInt(d.writeFD, i2cSlave, addr); err != nil {
		return &BindError{Addr: addr, Partial: true, Err: err}
	}
	return nil
}

func (d *I2CDev) Read(p []byte) (int, error) {
	return unix.Read(d.readFD, p)
}

func (d *I2CDev) Write(p []byte) (int, error) {
	return unix.Write(d.writeFD, p)
}

// Close releases both descriptors; the second is closed even when the first
// close fails.
func (d *I2CDev) Close() error {
	readErr := unix.Close(d.readFD)
	writeErr := unix.Close(d.writeFD)
	if readErr != nil {
		return fmt.Errorf("close %s (read): %w", d.path, readErr)
	}
	if writeErr != nil {
		return fmt.Errorf("close %s (write): %w", d.path, writeErr)
	}
	return nil
}

// Path returns the device node path.
func (d *I2CDev) Path() string {
	return d.path
}
