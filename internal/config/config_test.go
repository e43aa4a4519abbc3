package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/scanner"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fpsctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 64, cfg.Serial.BufferSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, "GT-511C3", cfg.Scanner.Model)
	assert.Equal(t, 9600, cfg.Scanner.BaudRate)
	assert.Equal(t, 64, cfg.Scanner.ChunkSize)
	assert.Equal(t, "payload", cfg.Scanner.ChecksumScope)
	assert.Equal(t, 5*time.Second, cfg.Scanner.ReadTimeout)
	assert.Equal(t, 25*time.Millisecond, cfg.Scanner.ProbeInterval)
	assert.Equal(t, 100, cfg.Scanner.ProbeAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB1
scanner:
  model: GT-521F52
  baud_rate: 115200
  read_timeout: 2s
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, "GT-521F52", cfg.Scanner.Model)
	assert.Equal(t, 115200, cfg.Scanner.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Scanner.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset keys keep their defaults
	assert.Equal(t, 64, cfg.Scanner.ChunkSize)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "scanner:\n  baud_rate: 57600\n")
	t.Setenv("FPS_SCANNER_BAUD_RATE", "38400")
	t.Setenv("FPS_SERIAL_PORT", "/dev/ttyACM0")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 38400, cfg.Scanner.BaudRate)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeConfig(t, "scanner:\n  chunk_size: 32\n")
	t.Setenv("FPS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Scanner.ChunkSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit file must exist")

	_, err = Load(writeConfig(t, "scanner: [not, a, map\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown model", func(c *Config) { c.Scanner.Model = "GT-999" }, "scanner.model"},
		{"empty model", func(c *Config) { c.Scanner.Model = "" }, ""},
		{"bad baud", func(c *Config) { c.Scanner.BaudRate = 14400 }, "scanner.baud_rate"},
		{"zero chunk", func(c *Config) { c.Scanner.ChunkSize = 0 }, "scanner.chunk_size"},
		{"chunk over buffer", func(c *Config) { c.Scanner.ChunkSize = 128 }, "exceeds serial.buffer_size"},
		{"legacy chunk with big buffer", func(c *Config) {
			c.Scanner.ChunkSize = 128
			c.Serial.BufferSize = 256
		}, ""},
		{"bad capacity", func(c *Config) { c.Scanner.Capacity = 70000 }, "scanner.capacity"},
		{"bad scope", func(c *Config) { c.Scanner.ChecksumScope = "crc" }, "scanner.checksum_scope"},
		{"header scope", func(c *Config) { c.Scanner.ChecksumScope = "header+payload" }, ""},
		{"zero read timeout", func(c *Config) { c.Scanner.ReadTimeout = 0 }, "scanner.read_timeout"},
		{"negative interval", func(c *Config) { c.Scanner.PollInterval = -time.Millisecond }, "intervals"},
		{"zero probe attempts", func(c *Config) { c.Scanner.ProbeAttempts = 0 }, "scanner.probe_attempts"},
		{"zero buffer", func(c *Config) { c.Serial.BufferSize = 0 }, "serial.buffer_size"},
		{"simulator baud", func(c *Config) { c.Simulator.BaudRate = 300 }, "simulator.baud_rate"},
		{"simulator capacity", func(c *Config) { c.Simulator.Capacity = 0 }, "simulator.capacity"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics path", func(c *Config) {
			c.Metrics.Addr = ":9100"
			c.Metrics.Path = "metrics"
		}, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}

	assert.Error(t, Validate(nil))
}

func TestValidateDoesNotMutate(t *testing.T) {
	cfg := Default()
	cfg.Scanner.Model = ""
	before := *cfg

	require.NoError(t, Validate(cfg))
	assert.Equal(t, before, *cfg)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyS0"
	cfg.Scanner.BaudRate = 57600

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))
	assert.Contains(t, buf.String(), "baud_rate: 57600")
	assert.Contains(t, buf.String(), "read_timeout: 5s")

	loaded, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestScannerOptions(t *testing.T) {
	cfg := Default()
	cfg.Scanner.Model = "GT-521F52"
	cfg.Scanner.BaudRate = 115200
	cfg.Scanner.ChecksumScope = "header+payload"
	cfg.Scanner.StrictDataChecksum = true

	opts, err := cfg.ScannerOptions()
	require.NoError(t, err)

	dev, err := cfg.NewSimulator()
	require.NoError(t, err)
	got := scanner.New(dev, opts...).Config()

	assert.Equal(t, 115200, got.BaudRate)
	assert.Equal(t, 3000, got.Capacity)
	assert.Equal(t, protocol.ChecksumHeaderAndPayload, got.ChecksumScope)
	assert.True(t, got.StrictDataChecksum)
	assert.Equal(t, 5*time.Second, got.ReadTimeout)

	cfg.Scanner.Capacity = 500
	opts, err = cfg.ScannerOptions()
	require.NoError(t, err)
	assert.Equal(t, 500, scanner.New(dev, opts...).Config().Capacity, "explicit capacity wins")

	cfg.Scanner.ChecksumScope = "crc"
	_, err = cfg.ScannerOptions()
	assert.Error(t, err)
}

func TestNewSimulator(t *testing.T) {
	cfg := Default()
	cfg.Simulator.BaudRate = 38400

	dev, err := cfg.NewSimulator()
	require.NoError(t, err)
	assert.Equal(t, 38400, dev.BaudRate())
}
