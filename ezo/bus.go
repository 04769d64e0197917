package ezo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hydropath/atlas-ezo/transports"
)

// Bus is one addressed conversation endpoint on the sensor bus. It owns the
// transport and implements the write, delay, read exchange the EZO circuits
// expect. Individual operations are locked, but a Bus still belongs to one
// logical conversation at a time: interleaving SelectAddress with Query from
// multiple goroutines gives undefined protocol behavior.
type Bus struct {
	transport  Transport
	frameSize  int
	longDelay  time.Duration
	shortDelay time.Duration

	mu     sync.Mutex
	addr   int
	closed bool
}

// BusConfig holds configuration for opening a Bus.
type BusConfig struct {
	// Transport is the underlying byte channel. If nil, an I2C devfs
	// transport is opened on the bus given by Bus.
	Transport Transport

	// Bus is the I2C adapter number, the N in /dev/i2c-N, used when
	// Transport is nil. Newer Raspberry Pi boards use bus 1 (DefaultBus);
	// older revisions use bus 0.
	Bus int

	// Address is the device address bound at open, in 0..127. The family's
	// factory default is 99 (DefaultAddress).
	Address int

	// FrameSize caps how many bytes a single response read requests.
	// Default is 31, the largest frame the circuits emit.
	FrameSize int

	// LongDelay and ShortDelay override the processing waits. Defaults are
	// the fixed protocol constants (1.5s and 500ms).
	LongDelay  time.Duration
	ShortDelay time.Duration
}

// DefaultBusConfig returns a BusConfig preloaded with the family defaults:
// bus 1, device address 99. Bus and Address are taken literally by Open, so
// the zero BusConfig means exactly what it says: adapter /dev/i2c-0, device
// address 0.
func DefaultBusConfig() BusConfig {
	return BusConfig{Bus: DefaultBus, Address: DefaultAddress}
}

// Open acquires the bus streams, binds them to the configured address and
// returns a ready Bus. Failures to open the device node or to perform the
// initial bind surface as *ConnError.
func Open(cfg BusConfig) (*Bus, error) {
	if cfg.FrameSize == 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.LongDelay == 0 {
		cfg.LongDelay = LongDelay
	}
	if cfg.ShortDelay == 0 {
		cfg.ShortDelay = ShortDelay
	}

	if cfg.Address < 0 || cfg.Address > MaxAddress {
		return nil, fmt.Errorf("%w: %d (valid range: 0-%d)", ErrInvalidAddress, cfg.Address, MaxAddress)
	}

	transport := cfg.Transport
	device := ""
	if transport == nil {
		device = transports.DevicePath(cfg.Bus)
		dev, err := transports.OpenI2C(transports.I2CConfig{Bus: cfg.Bus})
		if err != nil {
			return nil, &ConnError{Device: device, Err: err}
		}
		transport = dev
	}

	// Point-to-point links (UART-mode circuits) have no address selection;
	// the configured address is still recorded.
	if err := transport.Bind(cfg.Address); err != nil && !errors.Is(err, transports.ErrNotAddressable) {
		if cfg.Transport == nil {
			transport.Close()
		}
		return nil, &ConnError{Device: device, Err: err}
	}

	return &Bus{
		transport:  transport,
		frameSize:  cfg.FrameSize,
		longDelay:  cfg.LongDelay,
		shortDelay: cfg.ShortDelay,
		addr:       cfg.Address,
	}, nil
}

// Close releases the transport. Closing is terminal and idempotent; every
// other operation on a closed Bus fails with ErrBusClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.transport.Close()
}

// Address returns the currently recorded device address.
func (b *Bus) Address() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addr
}

// SelectAddress re-binds both bus streams to a new device address. The
// recorded address is updated only after both streams are bound; on failure
// it keeps its prior value and the returned *AddressError tells (via Partial)
// whether the streams were left desynchronized.
func (b *Bus) SelectAddress(addr int) error {
	if addr < 0 || addr > MaxAddress {
		return &AddressError{Addr: addr, Err: ErrInvalidAddress}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	return b.selectAddressLocked(addr)
}

// WriteCommand appends the single NUL terminator and transmits the command
// bytes. No response is read.
func (b *Bus) WriteCommand(cmd string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	return b.writeCommandLocked(cmd)
}

// ReadResponse reads up to maxBytes from the bus (0 means the configured
// frame size) and decodes the frame: NUL padding stripped, status byte
// checked, payload returned with the glitched high bits cleared. A non-OK
// status surfaces as *DeviceError; a frame with no status byte at all as
// ErrEmptyFrame.
func (b *Bus) ReadResponse(maxBytes int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	return b.readResponseLocked(maxBytes)
}

// Query is the composite operation: classify the command's delay tier, write
// it, sleep out the processing window on the calling goroutine, then read and
// decode the response as text. Sleep commands are rejected before any I/O.
//
// The processing wait is a plain sleep. Cancellation is observed only at the
// write and read boundaries, never mid-delay: abandoning the exchange there
// would leave the circuit holding a response that desynchronizes the next
// read.
func (b *Bus) Query(ctx context.Context, cmd string) (string, error) {
	class, err := ClassifyCommand(cmd)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrBusClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := b.writeCommandLocked(cmd); err != nil {
		return "", err
	}

	delay := b.shortDelay
	if class == DelayLong {
		delay = b.longDelay
	}
	time.Sleep(delay)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := b.readResponseLocked(0)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Scan probes every bus address in ascending order and reports the ones where
// a device answers a bare read. Any framed answer counts as present, error
// statuses included: a circuit with nothing queued still acks with a no-data
// status. Only transport-level I/O failures mean nobody is home, so devices
// are never falsely reported, though quiet ones can be missed. The address
// selected before the sweep is restored on every exit path.
func (b *Bus) Scan(ctx context.Context) ([]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	orig := b.addr
	// Best-effort restore; a bind failure here leaves the sweep's last
	// address selected, which the recorded address then reflects.
	defer func() { _ = b.selectAddressLocked(orig) }()

	var found []int
	for addr := 0; addr <= MaxAddress; addr++ {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		if err := b.selectAddressLocked(addr); err != nil {
			continue
		}

		_, err := b.readResponseLocked(0)
		var commErr *CommError
		if errors.As(err, &commErr) {
			continue
		}
		found = append(found, addr)
	}

	return found, nil
}

// Internal methods

func (b *Bus) selectAddressLocked(addr int) error {
	if err := b.transport.Bind(addr); err != nil {
		var bindErr *transports.BindError
		partial := errors.As(err, &bindErr) && bindErr.Partial
		return &AddressError{Addr: addr, Partial: partial, Err: err}
	}
	b.addr = addr
	return nil
}

func (b *Bus) writeCommandLocked(cmd string) error {
	payload := append([]byte(cmd), 0)

	n, err := b.transport.Write(payload)
	if err != nil {
		return &CommError{Op: "write", Err: err}
	}
	if n != len(payload) {
		return &CommError{Op: "write", Err: fmt.Errorf("incomplete write: %d of %d bytes", n, len(payload))}
	}
	return nil
}

func (b *Bus) readResponseLocked(maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = b.frameSize
	}

	buf := make([]byte, maxBytes)
	n, err := b.transport.Read(buf)
	if err != nil {
		return nil, &CommError{Op: "read", Err: err}
	}

	return DecodeFrame(buf[:n])
}
