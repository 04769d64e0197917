package transports

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialDev implements the transport over a UART link, for EZO circuits
// switched into serial mode. The link is point-to-point, so Bind always fails
// with ErrNotAddressable; multi-device buses need the I2C transport.
type SerialDev struct {
	port     serial.Port
	portName string
}

// SerialConfig holds configuration for opening a serial port.
type SerialConfig struct {
	Port     string
	BaudRate int           // default 9600, the EZO serial-mode default
	Timeout  time.Duration // read timeout, default 1s
}

// OpenSerial opens a serial port with the given configuration.
func OpenSerial(cfg SerialConfig) (*SerialDev, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &SerialDev{port: port, portName: cfg.Port}, nil
}

func (d *SerialDev) Read(p []byte) (int, error) {
	return d.port.Read(p)
}

func (d *SerialDev) Write(p []byte) (int, error) {
	return d.port.Write(p)
}

func (d *SerialDev) Close() error {
	return d.port.Close()
}

func (d *SerialDev) Bind(addr int) error {
	return &BindError{Addr: addr, Err: ErrNotAddressable}
}

// PortName returns the serial port name.
func (d *SerialDev) PortName() string {
	return d.portName
}
