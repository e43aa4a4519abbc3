package config

import (
	"fmt"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/scanner"
	"github.com/moffa90/go-gt511/serialport"
	"github.com/moffa90/go-gt511/simulator"
)

// ScannerOptions converts the scanner section into scanner options.
// An explicit capacity overrides the one implied by the model.
func (c *Config) ScannerOptions() ([]scanner.Option, error) {
	s := c.Scanner

	scope, err := protocol.ParseChecksumScope(s.ChecksumScope)
	if err != nil {
		return nil, fmt.Errorf("scanner.checksum_scope: %w", err)
	}

	opts := []scanner.Option{
		scanner.WithBaudRate(s.BaudRate),
		scanner.WithChunkSize(s.ChunkSize),
		scanner.WithChecksumScope(scope),
		scanner.WithStrictDataChecksum(s.StrictDataChecksum),
		scanner.WithReadTimeout(s.ReadTimeout),
		scanner.WithPollInterval(s.PollInterval),
		scanner.WithProbe(s.ProbeInterval, s.ProbeAttempts),
		scanner.WithDrainDelay(s.DrainDelay),
	}

	if s.Model != "" {
		model, ok := scanner.Models[s.Model]
		if !ok {
			return nil, fmt.Errorf("scanner.model %q is unknown", s.Model)
		}
		opts = append(opts, scanner.WithModel(model))
	}
	if s.Capacity > 0 {
		opts = append(opts, scanner.WithCapacity(s.Capacity))
	}

	return opts, nil
}

// SerialOptions converts the serial section into serial port options.
func (c *Config) SerialOptions() []serialport.Option {
	return []serialport.Option{
		serialport.WithBufferSize(c.Serial.BufferSize),
		serialport.WithReadTimeout(c.Serial.ReadTimeout),
	}
}

// NewSimulator builds the simulated device described by the simulator
// section, with its configured finger already on the sensor.
func (c *Config) NewSimulator() (*simulator.Device, error) {
	scope, err := protocol.ParseChecksumScope(c.Simulator.ChecksumScope)
	if err != nil {
		return nil, fmt.Errorf("simulator.checksum_scope: %w", err)
	}

	dev := simulator.New(
		simulator.WithBaudRate(c.Simulator.BaudRate),
		simulator.WithCapacity(c.Simulator.Capacity),
		simulator.WithChecksumScope(scope),
	)
	if c.Simulator.Finger >= 0 {
		dev.PressFinger(c.Simulator.Finger)
	}
	return dev, nil
}
