// Package scanner provides a high-level driver for GT-511C3 family
// fingerprint scanners (GT-511C3, GT-521F32, GT-521F52).
//
// This package handles the complete serial session including:
//   - Baud rate negotiation across 9600 to 115200 baud
//   - Command/response exchanges with best-effort frame parsing
//   - Chunked image and template downloads with overflow recovery
//   - Template uploads
//   - Progress, diagnostic and metrics reporting
//
// # Basic Usage
//
//	port := serialport.New("/dev/ttyUSB0")
//	fps := scanner.New(port)
//	defer fps.Close(ctx)
//
//	if _, err := fps.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fps.SetLED(ctx, true)
//
// # Enrollment
//
// Enrollment takes three high quality captures of the same finger:
//
//	fps.EnrollStart(ctx, id)
//	for step := 1; step <= 3; step++ {
//	    // wait for a finger, then:
//	    fps.CaptureFinger(ctx, true)
//	    // Enroll1, Enroll2, Enroll3 in turn
//	}
//
// # Result Codes
//
// Operations that the device can refuse return a small result type
// (EnrollStartResult, EnrollResult, VerifyResult, TemplateResult,
// SetTemplateResult) with a nil error. Errors are reserved for transport
// failures, timeouts and NACKs an operation has no result code for, which
// come back as *protocol.ProtocolError.
//
// # Negotiation
//
// The first Open probes each rate of protocol.BaudRates with an Open
// command. If the device answers at a rate other than the desired one,
// it is moved to the desired rate with ChangeBaudRate. A device that never
// answers yields an error wrapping ErrNoResponse:
//
//	if _, err := fps.Open(ctx); errors.Is(err, scanner.ErrNoResponse) {
//	    log.Fatal("check wiring and power")
//	}
//
// # Bulk Transfers
//
// Images and templates arrive as a data packet read in chunks of
// Config.ChunkSize bytes. If the port reports a receive buffer overflow,
// the transfer is abandoned, the channel is drained, and an
// *OverflowError is returned. Nothing is retried automatically.
//
// # Diagnostics
//
// Malformed frames are not fatal. Each structural mismatch is sent to the
// DiagnosticSink set with WithDiagnostics:
//
//	fps := scanner.New(port, scanner.WithDiagnostics(scanner.DiagnosticFunc(
//	    func(d scanner.Diagnostic) { log.Printf("%s: %v", d.Kind, d.Mismatches) },
//	)))
package scanner
