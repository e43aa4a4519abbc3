package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/moffa90/go-gt511/internal/config"
	"github.com/moffa90/go-gt511/scanner"
)

// InitLogger builds a zap logger writing to stderr and, when a filename is
// configured, to a lumberjack rotating file.
func InitLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     func(t time.Time, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(t.Format(time.RFC3339Nano)) },
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(console)}
	if cfg.File.Filename != "" {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Filename,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	return zap.New(core, zap.AddCaller()), nil
}

// scannerLogger adapts zap to scanner.Logger.
type scannerLogger struct {
	sugar *zap.SugaredLogger
}

// NewScannerLogger returns a scanner.Logger that forwards to logger under
// the "scanner" name. Key/value pairs become structured fields.
func NewScannerLogger(logger *zap.Logger) scanner.Logger {
	// Skip the adapter frame and the scanner's log helper
	sugar := logger.Named("scanner").WithOptions(zap.AddCallerSkip(2)).Sugar()
	return &scannerLogger{sugar: sugar}
}

func (l *scannerLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *scannerLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *scannerLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// NewDiagnosticSink returns a scanner.DiagnosticSink that logs each
// protocol irregularity at warn level.
func NewDiagnosticSink(logger *zap.Logger) scanner.DiagnosticSink {
	logger = logger.Named("protocol")
	return scanner.DiagnosticFunc(func(d scanner.Diagnostic) {
		fields := make([]string, len(d.Mismatches))
		for i, m := range d.Mismatches {
			fields[i] = m.String()
		}
		logger.Warn("protocol irregularity",
			zap.String("operation", d.Operation),
			zap.String("kind", d.Kind),
			zap.Strings("mismatches", fields),
			zap.String("raw", fmt.Sprintf("% X", d.Raw)),
		)
	})
}
