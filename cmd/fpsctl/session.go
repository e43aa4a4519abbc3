package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moffa90/go-gt511/internal/config"
	"github.com/moffa90/go-gt511/internal/logging"
	"github.com/moffa90/go-gt511/internal/metrics"
	"github.com/moffa90/go-gt511/scanner"
	"github.com/moffa90/go-gt511/serialport"
	"github.com/moffa90/go-gt511/simulator"
)

// session is one opened scanner plus the plumbing around it.
type session struct {
	cfg *config.Config
	log *zap.Logger
	fps *scanner.Scanner
	sim *simulator.Device
	srv *http.Server
}

// loadConfig reads the configuration file and applies the root flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Serial.Port = rootPort
	}
	if flags.Changed("baud") {
		cfg.Scanner.BaudRate = rootBaud
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Addr = rootMetrics
	}
	if rootDebug {
		cfg.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withScanner opens the scanner, runs fn and closes everything again.
func withScanner(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(ctx, s)
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s := &session{cfg: cfg, log: log}

	opts, err := cfg.ScannerOptions()
	if err != nil {
		s.close()
		return nil, err
	}
	opts = append(opts,
		scanner.WithLogger(logging.NewScannerLogger(log)),
		scanner.WithDiagnostics(logging.NewDiagnosticSink(log)),
	)
	if rootProgress {
		opts = append(opts, scanner.WithProgressCallback(printProgress))
	}

	if cfg.Metrics.Addr != "" {
		reg := metrics.NewRegistry()
		opts = append(opts, scanner.WithMetrics(metrics.NewScannerMetrics(reg)))
		s.serveMetrics(reg)
	}

	var port scanner.Port
	if rootSimulate {
		s.sim, err = cfg.NewSimulator()
		if err != nil {
			s.close()
			return nil, err
		}
		port = s.sim
	} else {
		if cfg.Serial.Port == "" {
			s.close()
			return nil, errors.New("no serial port configured, use --port or --simulate")
		}
		port = serialport.New(cfg.Serial.Port, append(cfg.SerialOptions(), serialport.WithLogger(log))...)
	}

	s.fps = scanner.New(port, opts...)
	if _, err := s.fps.Open(ctx); err != nil {
		s.close()
		return nil, err
	}

	log.Debug("session opened",
		zap.Stringer("session", s.fps.SessionID()),
		zap.Int("baud", s.fps.BaudRate()))
	return s, nil
}

func (s *session) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Metrics.Path, metrics.Handler(reg))
	s.srv = &http.Server{
		Addr:              s.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server", zap.Error(err))
		}
	}()
	s.log.Info("serving metrics", zap.String("addr", s.cfg.Metrics.Addr), zap.String("path", s.cfg.Metrics.Path))
}

func (s *session) close() {
	if s.fps != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.fps.Close(ctx); err != nil {
			s.log.Warn("close scanner", zap.Error(err))
		}
		cancel()
	}
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.srv.Shutdown(ctx)
		cancel()
	}
	_ = s.log.Sync()
}

func printProgress(p scanner.Progress) {
	fmt.Fprintf(os.Stderr, "\r[%s] %5.1f%% chunk %d/%d", p.Operation, p.Percentage, p.Chunk, p.TotalChunks)
	if p.Chunk == p.TotalChunks {
		fmt.Fprintln(os.Stderr)
	}
}

func parseID(arg string) (uint16, error) {
	id, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return uint16(id), nil
}
