package transports

import (
	"io"
)

// Mock implements the bus transport for testing.
type Mock struct {
	ReadData  []byte
	ReadErr   error
	WriteData []byte
	WriteErr  error
	Closed    bool

	// BindErr fails every Bind when set.
	BindErr error
	// BoundAddr is the address of the most recent successful Bind.
	BoundAddr int
	// Binds records every successfully bound address in order.
	Binds []int

	// ReadFunc allows custom read behavior for complex tests.
	ReadFunc func(p []byte) (int, error)
	// BindFunc allows per-address bind behavior; takes precedence over BindErr.
	BindFunc func(addr int) error
}

func (m *Mock) Read(p []byte) (int, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (m *Mock) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.WriteData = append(m.WriteData, p...)
	return len(p), nil
}

func (m *Mock) Bind(addr int) error {
	if m.BindFunc != nil {
		if err := m.BindFunc(addr); err != nil {
			return err
		}
	} else if m.BindErr != nil {
		return m.BindErr
	}
	m.BoundAddr = addr
	m.Binds = append(m.Binds, addr)
	return nil
}

func (m *Mock) Close() error {
	m.Closed = true
	return nil
}
