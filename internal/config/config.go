package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. FPS_SERIAL_PORT.
const EnvPrefix = "FPS"

// SerialConfig describes the physical serial line.
type SerialConfig struct {
	Port        string        `mapstructure:"port" yaml:"port"`
	BufferSize  int           `mapstructure:"buffer_size" yaml:"buffer_size"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
}

// ScannerConfig mirrors scanner.Config for file-based setup.
type ScannerConfig struct {
	Model              string        `mapstructure:"model" yaml:"model"`
	BaudRate           int           `mapstructure:"baud_rate" yaml:"baud_rate"`
	ChunkSize          int           `mapstructure:"chunk_size" yaml:"chunk_size"`
	Capacity           int           `mapstructure:"capacity" yaml:"capacity"`
	ChecksumScope      string        `mapstructure:"checksum_scope" yaml:"checksum_scope"`
	StrictDataChecksum bool          `mapstructure:"strict_data_checksum" yaml:"strict_data_checksum"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	PollInterval       time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	ProbeInterval      time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	ProbeAttempts      int           `mapstructure:"probe_attempts" yaml:"probe_attempts"`
	DrainDelay         time.Duration `mapstructure:"drain_delay" yaml:"drain_delay"`
}

// SimulatorConfig sets up the in-memory device used with --simulate.
type SimulatorConfig struct {
	BaudRate      int    `mapstructure:"baud_rate" yaml:"baud_rate"`
	Capacity      int    `mapstructure:"capacity" yaml:"capacity"`
	ChecksumScope string `mapstructure:"checksum_scope" yaml:"checksum_scope"`
	Finger        int    `mapstructure:"finger" yaml:"finger"`
}

// FileConfig configures the rotating log file. An empty Filename
// disables file output.
type FileConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig selects log level, encoding and outputs.
type LoggingConfig struct {
	Level  string     `mapstructure:"level" yaml:"level"`
	Format string     `mapstructure:"format" yaml:"format"`
	File   FileConfig `mapstructure:"file" yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Path string `mapstructure:"path" yaml:"path"`
}

// Config is the top-level fpsctl configuration.
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial" yaml:"serial"`
	Scanner   ScannerConfig   `mapstructure:"scanner" yaml:"scanner"`
	Simulator SimulatorConfig `mapstructure:"simulator" yaml:"simulator"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// Load reads configuration from a YAML file and FPS_* environment
// variables on top of defaults.
//
// If path is empty, FPS_CONFIG is consulted, then fpsctl.yaml in the
// working directory and in $HOME/.config/fpsctl. A missing default file
// is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fpsctl")
		v.SetConfigName("fpsctl")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration Load yields with no file and no
// environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.buffer_size", 64)
	v.SetDefault("serial.read_timeout", "50ms")

	v.SetDefault("scanner.model", "GT-511C3")
	v.SetDefault("scanner.baud_rate", 9600)
	v.SetDefault("scanner.chunk_size", 64)
	v.SetDefault("scanner.capacity", 0)
	v.SetDefault("scanner.checksum_scope", "payload")
	v.SetDefault("scanner.strict_data_checksum", false)
	v.SetDefault("scanner.read_timeout", "5s")
	v.SetDefault("scanner.poll_interval", "2ms")
	v.SetDefault("scanner.probe_interval", "25ms")
	v.SetDefault("scanner.probe_attempts", 100)
	v.SetDefault("scanner.drain_delay", "1ms")

	v.SetDefault("simulator.baud_rate", 9600)
	v.SetDefault("simulator.capacity", 200)
	v.SetDefault("simulator.checksum_scope", "payload")
	v.SetDefault("simulator.finger", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.max_size", 10)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
}

// Dump writes cfg to w as YAML.
func Dump(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
