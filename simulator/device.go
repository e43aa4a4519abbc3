package simulator

import (
	"errors"
	"sync"

	"github.com/moffa90/go-gt511/protocol"
)

var (
	// ErrClosed is returned by I/O on a closed device.
	ErrClosed = errors.New("simulator: port closed")

	// ErrEmpty is returned by ReadByte when nothing is buffered.
	ErrEmpty = errors.New("simulator: no data buffered")
)

// none marks an empty sensor, capture buffer or pending slot.
const none = -1

// Device emulates a GT-511C3 scanner behind a serial port. It implements
// the scanner.Port contract, answering commands synchronously: the
// response to a command is buffered by the time Write returns.
//
// The device only understands the host while both sides use the same
// baud rate. Bytes written at any other rate are lost, as they would be
// on a real line.
//
// Device is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	baud     int
	hostBaud int
	open     bool
	capacity int
	scope    protocol.ChecksumScope

	inbox []byte
	rx    []byte

	led       bool
	finger    int
	captured  int
	templates map[int][]byte

	enrollID      int
	enrollStep    int
	enrollFinger  int
	pendingUpload int
	pendingDup    bool

	silent        bool
	noise         []byte
	corruptNext   bool
	injected      map[protocol.Opcode][][]byte
	uploadReplies [][]byte
	overflowAfter int
	overflowAt    int
	overflowFlag  bool
	readCount     int
	commands      []protocol.Command
}

// Option configures a Device.
type Option func(*Device)

// WithBaudRate sets the rate the device listens at. Default is 9600.
func WithBaudRate(rate int) Option {
	return func(d *Device) {
		if protocol.ValidBaudRate(rate) {
			d.baud = rate
		}
	}
}

// WithCapacity sets the database size. Default is 200.
func WithCapacity(capacity int) Option {
	return func(d *Device) {
		if capacity > 0 {
			d.capacity = capacity
		}
	}
}

// WithChecksumScope sets the data packet checksum form the device uses
// and expects. Default is protocol.ChecksumPayload.
func WithChecksumScope(scope protocol.ChecksumScope) Option {
	return func(d *Device) {
		d.scope = scope
	}
}

// New creates a simulated device.
//
// Example:
//
//	dev := simulator.New(simulator.WithBaudRate(38400))
//	fps := scanner.New(dev)
func New(opts ...Option) *Device {
	d := &Device{
		baud:          protocol.DefaultBaudRate,
		capacity:      200,
		scope:         protocol.ChecksumPayload,
		finger:        none,
		captured:      none,
		templates:     make(map[int][]byte),
		enrollID:      none,
		pendingUpload: none,
		injected:      make(map[protocol.Opcode][][]byte),
		overflowAfter: -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open opens the host side of the link at baud and discards buffered input.
func (d *Device) Open(baud int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = true
	d.hostBaud = baud
	d.rx = nil
	d.inbox = nil
	d.overflowFlag = false
	return nil
}

// Close closes the host side of the link.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = false
	d.rx = nil
	d.inbox = nil
	return nil
}

// SetBaudRate switches the host side of the link to baud.
func (d *Device) SetBaudRate(baud int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return ErrClosed
	}
	d.hostBaud = baud
	return nil
}

// Write delivers host bytes to the device.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return 0, ErrClosed
	}
	if d.silent || d.hostBaud != d.baud {
		return len(p), nil
	}

	d.inbox = append(d.inbox, p...)
	d.process()
	return len(p), nil
}

// ReadByte returns the next byte sent by the device.
func (d *Device) ReadByte() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return 0, ErrClosed
	}
	if len(d.rx) == 0 {
		return 0, ErrEmpty
	}

	b := d.rx[0]
	d.rx = d.rx[1:]
	d.readCount++

	if d.overflowAt > 0 && d.readCount >= d.overflowAt {
		d.overflowFlag = true
		d.overflowAt = 0
	}
	return b, nil
}

// Available returns the number of bytes waiting for the host.
func (d *Device) Available() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rx)
}

// Overflow reports and clears the simulated overflow flag.
func (d *Device) Overflow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	flag := d.overflowFlag
	d.overflowFlag = false
	return flag
}

// process consumes complete frames and data packets from the inbox.
func (d *Device) process() {
	for {
		if d.pendingUpload != none {
			need := protocol.TransferLength(protocol.TemplateSize)
			if len(d.inbox) < need {
				return
			}
			packet := append([]byte(nil), d.inbox[:need]...)
			d.inbox = d.inbox[need:]
			d.handleUpload(packet)
			continue
		}

		if len(d.inbox) < protocol.FrameSize {
			return
		}
		if d.inbox[0] != protocol.CommandStartCode1 || d.inbox[1] != protocol.CommandStartCode2 {
			d.inbox = d.inbox[1:]
			continue
		}

		frame := append([]byte(nil), d.inbox[:protocol.FrameSize]...)
		d.inbox = d.inbox[protocol.FrameSize:]

		cmd, err := protocol.ParseCommand(frame)
		if err != nil {
			d.respond(protocol.BuildNack(protocol.NackCommErr))
			continue
		}
		d.commands = append(d.commands, cmd)

		if queue := d.injected[cmd.Opcode]; len(queue) > 0 {
			d.injected[cmd.Opcode] = queue[1:]
			d.respond(queue[0])
			continue
		}
		d.handle(cmd)
	}
}

// respond queues a response frame, applying any pending noise or corruption.
func (d *Device) respond(frame []byte) {
	frame = append([]byte(nil), frame...)
	if d.corruptNext {
		frame[protocol.FrameSize-1] ^= 0xFF
		d.corruptNext = false
	}
	if len(d.noise) > 0 {
		d.rx = append(d.rx, d.noise...)
		d.noise = nil
	}
	d.rx = append(d.rx, frame...)
}

// sendData queues a data packet, arming a pending overflow injection.
func (d *Device) sendData(payload []byte) {
	if d.overflowAfter >= 0 {
		d.overflowAt = d.readCount + len(d.rx) + d.overflowAfter
		if d.overflowAt == 0 {
			d.overflowAt = 1
		}
		d.overflowAfter = -1
	}
	d.rx = append(d.rx, protocol.BuildDataPacket(payload, d.scope)...)
}
