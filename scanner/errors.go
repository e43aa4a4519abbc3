package scanner

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoResponse is wrapped by NoResponseError.
	ErrNoResponse = errors.New("scanner did not respond")

	// ErrNotStarted is returned by operations issued before Open.
	ErrNotStarted = errors.New("session not started, call Open first")
)

// NoResponseError indicates that the device answered at none of the
// negotiation baud rates. It is fatal for the session.
type NoResponseError struct {
	// Rates lists the baud rates that were probed
	Rates []int

	// Polls is the total number of receive polls performed
	Polls int
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response from scanner at any of %v baud after %d polls", e.Rates, e.Polls)
}

func (e *NoResponseError) Unwrap() error {
	return ErrNoResponse
}

// OverflowError indicates that the host receive buffer overflowed during
// a bulk receive. The transfer was aborted and the channel drained.
type OverflowError struct {
	Operation string

	// Received is the number of bytes read before the overflow
	Received int

	// Expected is the full transfer length
	Expected int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: receive buffer overflow after %d of %d bytes", e.Operation, e.Received, e.Expected)
}

// InvalidBaudRateError indicates a baud rate outside the supported ladder.
type InvalidBaudRateError struct {
	Rate int
}

func (e *InvalidBaudRateError) Error() string {
	return fmt.Sprintf("invalid baud rate %d", e.Rate)
}

// TimeoutError indicates that the device stopped sending mid-frame.
type TimeoutError struct {
	Operation string
	After     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s waiting for the scanner", e.Operation, e.After)
}

// DataChecksumError indicates a bulk download whose trailing checksum did
// not match. Only returned with WithStrictDataChecksum.
type DataChecksumError struct {
	Operation string
	Expected  uint16
	Actual    uint16
}

func (e *DataChecksumError) Error() string {
	return fmt.Sprintf("%s: data checksum mismatch: expected 0x%04X, got 0x%04X",
		e.Operation, e.Expected, e.Actual)
}
