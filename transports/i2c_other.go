//go:build !linux

package transports

import "errors"

var errNoDevfs = errors.New("i2c devfs transport requires linux")

// I2CConfig holds configuration for opening an I2C devfs transport.
type I2CConfig struct {
	Bus int
}

// I2CDev is only available on Linux; on other platforms every operation
// reports the transport as unsupported.
type I2CDev struct{}

func OpenI2C(cfg I2CConfig) (*I2CDev, error) {
	return nil, errNoDevfs
}

func (d *I2CDev) Bind(addr int) error {
	return errNoDevfs
}

func (d *I2CDev) Read(p []byte) (int, error) {
	return 0, errNoDevfs
}

func (d *I2CDev) Write(p []byte) (int, error) {
	return 0, errNoDevfs
}

func (d *I2CDev) Close() error {
	return nil
}

func (d *I2CDev) Path() string {
	return ""
}
