package scanner

import (
	"time"

	"github.com/moffa90/go-gt511/protocol"
)

// Model describes a scanner variant. Capacity is both the number of
// database slots and the "not found" value returned by Identify1_N.
type Model struct {
	Name     string
	Capacity int
}

// Known scanner models.
var (
	GT511C3  = Model{Name: "GT-511C3", Capacity: 200}
	GT521F32 = Model{Name: "GT-521F32", Capacity: 200}
	GT521F52 = Model{Name: "GT-521F52", Capacity: 3000}
)

// Models maps model names to their descriptions.
var Models = map[string]Model{
	GT511C3.Name:  GT511C3,
	GT521F32.Name: GT521F32,
	GT521F52.Name: GT521F52,
}

// Config holds the scanner configuration.
type Config struct {
	// ProgressCallback is called during bulk transfers (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Diagnostics receives non-fatal protocol irregularities (optional)
	Diagnostics DiagnosticSink

	// Metrics receives protocol counters (optional)
	Metrics Metrics

	// BaudRate is the desired link speed after negotiation
	BaudRate int

	// ChunkSize is the bulk receive chunk size. It should not exceed the
	// host receive buffer.
	ChunkSize int

	// Capacity is the database size of the device model
	Capacity int

	// ChecksumScope selects the bytes covered by data packet checksums
	ChecksumScope protocol.ChecksumScope

	// StrictDataChecksum turns a bad download checksum into an error
	// instead of a diagnostic
	StrictDataChecksum bool

	// ReadTimeout bounds the wait for each byte of a response frame or data
	// packet. It restarts with every byte received.
	ReadTimeout time.Duration

	// PollInterval is the delay between polls of an empty receive buffer
	PollInterval time.Duration

	// ProbeInterval is the wait between polls while probing a baud rate
	ProbeInterval time.Duration

	// ProbeAttempts bounds the polls per baud rate during negotiation
	ProbeAttempts int

	// DrainDelay is the delay between bytes drained after an overflow
	DrainDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		BaudRate:      protocol.DefaultBaudRate,
		ChunkSize:     protocol.DefaultChunkSize,
		Capacity:      GT511C3.Capacity,
		ChecksumScope: protocol.ChecksumPayload,
		ReadTimeout:   5 * time.Second,
		PollInterval:  2 * time.Millisecond,
		ProbeInterval: 25 * time.Millisecond,
		ProbeAttempts: 100,
		DrainDelay:    time.Millisecond,
	}
}

// Option is a functional option for configuring the Scanner.
type Option func(*Config)

// WithProgressCallback sets a callback function to track bulk transfers.
//
// Example:
//
//	fps := scanner.New(port,
//	    scanner.WithProgressCallback(func(p scanner.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the scanner operations.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithDiagnostics sets the sink for protocol diagnostics.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithDiagnostics(scanner.DiagnosticFunc(func(d scanner.Diagnostic) {
//	    log.Printf("%s: %v", d.Kind, d.Mismatches)
//	})))
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(c *Config) {
		c.Diagnostics = sink
	}
}

// WithMetrics sets the receiver for protocol counters.
func WithMetrics(m Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithBaudRate sets the desired link speed. Rates outside
// protocol.BaudRates are ignored and the default of 9600 is kept.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithBaudRate(115200))
func WithBaudRate(rate int) Option {
	return func(c *Config) {
		if protocol.ValidBaudRate(rate) {
			c.BaudRate = rate
		}
	}
}

// WithChunkSize sets the bulk receive chunk size.
// Default is 64 bytes; the older driver generation used 128.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithChunkSize(protocol.LegacyChunkSize))
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= 4096 {
			c.ChunkSize = size
		}
	}
}

// WithModel sets the device capacity from a known model.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithModel(scanner.GT521F52))
func WithModel(m Model) Option {
	return WithCapacity(m.Capacity)
}

// WithCapacity sets the device database capacity directly.
func WithCapacity(capacity int) Option {
	return func(c *Config) {
		if capacity > 0 && capacity <= 0xFFFF {
			c.Capacity = capacity
		}
	}
}

// WithChecksumScope selects the bytes covered by data packet checksums.
// Default is protocol.ChecksumPayload.
func WithChecksumScope(scope protocol.ChecksumScope) Option {
	return func(c *Config) {
		c.ChecksumScope = scope
	}
}

// WithStrictDataChecksum makes a bad download checksum fail the transfer.
func WithStrictDataChecksum(strict bool) Option {
	return func(c *Config) {
		c.StrictDataChecksum = strict
	}
}

// WithReadTimeout sets the read timeout.
//
// Example:
//
//	fps := scanner.New(port, scanner.WithReadTimeout(2*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithPollInterval sets the delay between polls of an empty receive buffer.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.PollInterval = interval
		}
	}
}

// WithProbe sets the poll interval and the number of polls per baud rate
// used during negotiation. Default is 100 polls of 25ms.
func WithProbe(interval time.Duration, attempts int) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.ProbeInterval = interval
		}
		if attempts > 0 {
			c.ProbeAttempts = attempts
		}
	}
}

// WithDrainDelay sets the delay between bytes drained after an overflow.
func WithDrainDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.DrainDelay = delay
		}
	}
}
