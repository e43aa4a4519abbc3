// Package simulator emulates a GT-511C3 fingerprint scanner on the far
// side of a serial port.
//
// A Device keeps a template database, a sensor with an optional finger and
// a link speed of its own. It implements the scanner.Port contract, so a
// scanner.Scanner can drive it like real hardware:
//
//	dev := simulator.New(simulator.WithBaudRate(38400))
//	fps := scanner.New(dev, scanner.WithBaudRate(9600))
//	fps.Open(ctx) // finds 38400, then moves the device to 9600
//
// Fault injection covers the behavior real hardware shows under load:
// refused commands (QueueNack), line noise (InjectNoise), damaged frames
// (CorruptNextResponse), receive buffer overflow (InjectOverflow) and a
// dead device (SetSilent).
package simulator
