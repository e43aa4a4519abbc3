package scanner

import (
	"time"

	"github.com/moffa90/go-gt511/protocol"
)

// Progress contains information about a bulk transfer in progress.
// Passed to ProgressCallback once per chunk.
type Progress struct {
	// Operation names the transfer: "get template", "get image", "get raw image"
	// or "set template"
	Operation string

	// Chunk is the number of chunks completed so far
	Chunk int

	// TotalChunks is the number of chunks in the transfer
	TotalChunks int

	// Bytes is the number of payload bytes transferred so far
	Bytes int

	// TotalBytes is the payload size of the transfer
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the transfer started
	ElapsedTime time.Duration
}

// ProgressCallback is called during bulk transfers to report progress.
// Implementations should return quickly: the host receive buffer keeps
// filling while the callback runs.
//
// Example:
//
//	fps := scanner.New(port,
//	    scanner.WithProgressCallback(func(p scanner.Progress) {
//	        fmt.Printf("[%s] %.1f%% - chunk %d/%d\n",
//	            p.Operation, p.Percentage, p.Chunk, p.TotalChunks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the scanner.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	fps := scanner.New(port, scanner.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Diagnostic describes a non-fatal protocol irregularity, such as a
// response frame with a bad checksum or a data packet with wrong start codes.
type Diagnostic struct {
	// Operation is the command being executed
	Operation string

	// Kind is one of DiagnosticResponse, DiagnosticProbe,
	// DiagnosticDataHeader or DiagnosticDataChecksum
	Kind string

	// Mismatches lists the offending bytes
	Mismatches []protocol.FieldMismatch

	// Raw holds the affected bytes, when available
	Raw []byte
}

// Diagnostic kinds.
const (
	DiagnosticResponse     = "response"
	DiagnosticProbe        = "probe"
	DiagnosticDataHeader   = "data header"
	DiagnosticDataChecksum = "data checksum"
)

// DiagnosticSink receives protocol diagnostics.
type DiagnosticSink interface {
	Record(d Diagnostic)
}

// DiagnosticFunc adapts a function to DiagnosticSink.
type DiagnosticFunc func(Diagnostic)

// Record calls f(d).
func (f DiagnosticFunc) Record(d Diagnostic) {
	f(d)
}

// Metrics receives protocol counters. See internal/metrics for a
// Prometheus implementation.
type Metrics interface {
	// CommandSent counts a command frame written to the port
	CommandSent(op protocol.Opcode)

	// ResponseReceived counts a parsed response frame
	ResponseReceived(op protocol.Opcode, ack bool)

	// Diagnostic counts a protocol irregularity of the given kind
	Diagnostic(kind string)

	// BytesTransferred counts bulk payload bytes; direction is "rx" or "tx"
	BytesTransferred(direction string, n int)

	// Overflow counts an aborted bulk receive
	Overflow()

	// BaudRate records the current link speed
	BaudRate(rate int)
}
