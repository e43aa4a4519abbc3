package config

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/scanner"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
// The serial port path is not required here: the simulator needs none.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	if cfg.Serial.BufferSize <= 0 {
		return fmt.Errorf("serial.buffer_size must be positive, got %d", cfg.Serial.BufferSize)
	}
	if cfg.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be positive, got %s", cfg.Serial.ReadTimeout)
	}

	// ------------------------------------------------------------
	// SCANNER
	// ------------------------------------------------------------

	s := cfg.Scanner
	if s.Model != "" {
		if _, ok := scanner.Models[s.Model]; !ok {
			return fmt.Errorf("scanner.model %q is unknown (known: %s)", s.Model, modelNames())
		}
	}
	if !protocol.ValidBaudRate(s.BaudRate) {
		return fmt.Errorf("scanner.baud_rate %d is not one of %v", s.BaudRate, protocol.BaudRates)
	}
	if s.ChunkSize <= 0 || s.ChunkSize > 4096 {
		return fmt.Errorf("scanner.chunk_size must be in 1..4096, got %d", s.ChunkSize)
	}
	if s.ChunkSize > cfg.Serial.BufferSize {
		return fmt.Errorf("scanner.chunk_size %d exceeds serial.buffer_size %d",
			s.ChunkSize, cfg.Serial.BufferSize)
	}
	if s.Capacity < 0 || s.Capacity > 0xFFFF {
		return fmt.Errorf("scanner.capacity must be in 0..65535, got %d", s.Capacity)
	}
	if _, err := protocol.ParseChecksumScope(s.ChecksumScope); err != nil {
		return fmt.Errorf("scanner.checksum_scope: %w", err)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("scanner.read_timeout must be positive, got %s", s.ReadTimeout)
	}
	if s.PollInterval < 0 || s.ProbeInterval < 0 || s.DrainDelay < 0 {
		return fmt.Errorf("scanner intervals must not be negative")
	}
	if s.ProbeAttempts <= 0 {
		return fmt.Errorf("scanner.probe_attempts must be positive, got %d", s.ProbeAttempts)
	}

	// ------------------------------------------------------------
	// SIMULATOR
	// ------------------------------------------------------------

	if !protocol.ValidBaudRate(cfg.Simulator.BaudRate) {
		return fmt.Errorf("simulator.baud_rate %d is not one of %v", cfg.Simulator.BaudRate, protocol.BaudRates)
	}
	if cfg.Simulator.Capacity <= 0 {
		return fmt.Errorf("simulator.capacity must be positive, got %d", cfg.Simulator.Capacity)
	}
	if _, err := protocol.ParseChecksumScope(cfg.Simulator.ChecksumScope); err != nil {
		return fmt.Errorf("simulator.checksum_scope: %w", err)
	}

	// ------------------------------------------------------------
	// LOGGING / METRICS
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", cfg.Logging.Format)
	}
	if cfg.Metrics.Addr != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Metrics.Path)
	}

	return nil
}

func modelNames() string {
	names := make([]string, 0, len(scanner.Models))
	for _, m := range []scanner.Model{scanner.GT511C3, scanner.GT521F32, scanner.GT521F52} {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
