package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBufferSize matches the 64-byte receive buffer of the
	// microcontroller UARTs the scanner is usually paired with
	DefaultBufferSize = 64

	// DefaultReadTimeout bounds each OS read so the reader goroutine can
	// notice Close
	DefaultReadTimeout = 50 * time.Millisecond
)

var (
	// ErrNotOpen is returned by I/O on a port that is not open.
	ErrNotOpen = errors.New("serial port not open")

	// ErrEmpty is returned by ReadByte when nothing is buffered.
	ErrEmpty = errors.New("receive buffer empty")
)

// opener opens an OS serial port. Replaced in tests.
type opener func(name string, mode *serial.Mode) (serial.Port, error)

// Port is a scanner.Port over a physical serial line.
//
// A reader goroutine moves incoming bytes into a bounded receive buffer.
// It only takes as many bytes from the OS as the buffer has room for, so
// while the buffer is full the rest waits in the OS driver. The overflow
// flag is raised only when bytes are actually lost.
type Port struct {
	name        string
	bufferSize  int
	readTimeout time.Duration
	logger      *zap.Logger
	open        opener

	mu       sync.Mutex
	port     serial.Port
	buf      []byte
	overflow bool
	readErr  error
	done     chan struct{}
	space    chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Port.
type Option func(*Port)

// WithBufferSize sets the receive buffer depth in bytes.
func WithBufferSize(size int) Option {
	return func(p *Port) {
		if size > 0 {
			p.bufferSize = size
		}
	}
}

// WithReadTimeout sets the timeout of each OS read.
func WithReadTimeout(timeout time.Duration) Option {
	return func(p *Port) {
		if timeout > 0 {
			p.readTimeout = timeout
		}
	}
}

// WithLogger sets the logger used for line events.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Port) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Port for the named device. Nothing is opened until Open.
//
// Example:
//
//	port := serialport.New("/dev/ttyUSB0", serialport.WithBufferSize(256))
//	fps := scanner.New(port)
func New(name string, opts ...Option) *Port {
	p := &Port{
		name:        name,
		bufferSize:  DefaultBufferSize,
		readTimeout: DefaultReadTimeout,
		logger:      zap.NewNop(),
		open:        serial.Open,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}

// Open opens the device at baud, 8N1. An already open port is closed
// first, which also discards buffered input.
func (p *Port) Open(baud int) error {
	if err := p.Close(); err != nil {
		p.logger.Debug("closing previous port", zap.Error(err))
	}

	port, err := p.open(p.name, mode(baud))
	if err != nil {
		return fmt.Errorf("open %s: %w", p.name, err)
	}
	if err := port.SetReadTimeout(p.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", p.name, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		p.logger.Debug("reset input buffer", zap.Error(err))
	}

	p.mu.Lock()
	p.port = port
	p.buf = make([]byte, 0, p.bufferSize)
	p.overflow = false
	p.readErr = nil
	p.done = make(chan struct{})
	p.space = make(chan struct{}, 1)
	p.mu.Unlock()

	p.wg.Add(1)
	go p.receive(port, p.done, p.space)

	p.logger.Debug("serial port opened", zap.String("port", p.name), zap.Int("baud", baud))
	return nil
}

// Close stops the reader and closes the device. Closing a closed port
// is a no-op.
func (p *Port) Close() error {
	p.mu.Lock()
	port, done := p.port, p.done
	p.port = nil
	p.done = nil
	p.space = nil
	p.buf = nil
	p.mu.Unlock()

	if port == nil {
		return nil
	}

	close(done)
	err := port.Close()
	p.wg.Wait()
	return err
}

// SetBaudRate changes the line speed in place.
func (p *Port) SetBaudRate(baud int) error {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()

	if port == nil {
		return ErrNotOpen
	}
	if err := port.SetMode(mode(baud)); err != nil {
		return fmt.Errorf("set %s to %d baud: %w", p.name, baud, err)
	}
	p.logger.Debug("baud rate changed", zap.String("port", p.name), zap.Int("baud", baud))
	return nil
}

// Write sends b to the device.
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()

	if port == nil {
		return 0, ErrNotOpen
	}
	return port.Write(b)
}

// ReadByte pops the oldest buffered byte. A failed reader surfaces its
// error here once the buffer is empty.
func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buf) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		if p.port == nil {
			return 0, ErrNotOpen
		}
		return 0, ErrEmpty
	}

	b := p.buf[0]
	p.buf = p.buf[1:]

	// Wake the reader if it is waiting for room
	select {
	case p.space <- struct{}{}:
	default:
	}
	return b, nil
}

// Available returns the number of buffered bytes.
func (p *Port) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Overflow reports whether bytes were dropped since the last call.
func (p *Port) Overflow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	flag := p.overflow
	p.overflow = false
	return flag
}

// receive copies OS reads into the bounded buffer until done is closed.
// With the buffer full it waits for ReadByte to signal space.
func (p *Port) receive(port serial.Port, done, space <-chan struct{}) {
	defer p.wg.Done()

	chunk := make([]byte, p.bufferSize)
	for {
		room := p.room()
		if room == 0 {
			select {
			case <-done:
				return
			case <-space:
			}
			continue
		}

		n, err := port.Read(chunk[:room])

		select {
		case <-done:
			return
		default:
		}

		if err != nil {
			p.logger.Warn("serial read failed", zap.String("port", p.name), zap.Error(err))
			p.mu.Lock()
			p.readErr = fmt.Errorf("read %s: %w", p.name, err)
			p.mu.Unlock()
			return
		}
		if n > 0 {
			p.push(chunk[:n])
		}
	}
}

func (p *Port) room() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return max(p.bufferSize-len(p.buf), 0)
}

// push appends data to the buffer. The reader never reads more than the
// free room, so the drop path only guards against a shrunken buffer.
func (p *Port) push(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	room := p.bufferSize - len(p.buf)
	if room < len(data) {
		p.overflow = true
		p.logger.Debug("receive buffer overflow",
			zap.Int("dropped", len(data)-max(room, 0)),
			zap.Int("buffered", len(p.buf)),
		)
		if room <= 0 {
			return
		}
		data = data[:room]
	}
	p.buf = append(p.buf, data...)
}

func mode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
