// Package serialport connects the scanner to a physical serial line.
//
// Port implements scanner.Port over go.bug.st/serial. Incoming bytes are
// held in a small bounded buffer. When it is full the reader stops taking
// bytes from the OS until the scanner consumes some, so nothing is lost on
// a host with a driver-side buffer. Keep the scanner chunk size at or below
// the buffer size.
//
// Basic usage:
//
//	port := serialport.New("/dev/ttyUSB0")
//	fps := scanner.New(port, scanner.WithBaudRate(115200))
//	if _, err := fps.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer fps.Close(ctx)
package serialport
