package scanner

// Port is the byte-oriented serial transport the scanner talks through.
//
// ReadByte is only called when Available reports buffered data, so
// implementations may return an error from ReadByte on an empty buffer.
// See package serialport for a hardware implementation and package
// simulator for an emulated device.
type Port interface {
	// Open (re)opens the port at the given baud rate, discarding buffered input
	Open(baud int) error

	// Close releases the port
	Close() error

	// Write sends bytes to the device
	Write(p []byte) (int, error)

	// ReadByte returns the next buffered byte
	ReadByte() (byte, error)

	// Available returns the number of buffered bytes
	Available() int

	// Overflow reports whether the receive buffer overflowed since the
	// last call, and clears the flag
	Overflow() bool

	// SetBaudRate switches the link speed of an open port
	SetBaudRate(baud int) error
}
