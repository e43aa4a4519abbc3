package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/moffa90/go-gt511/protocol"
)

// Scanner drives a GT-511C3 family fingerprint scanner over a serial Port.
// It handles baud negotiation, command framing and bulk transfers.
//
// The protocol is half-duplex with one command in flight. Scanner
// serializes its public methods, so it is safe for concurrent use, but
// callers gain nothing from issuing commands in parallel.
type Scanner struct {
	port   Port
	config Config

	mu      sync.Mutex
	poll    *rate.Limiter
	state   SessionState
	baud    int
	started bool
	session uuid.UUID
}

// New creates a new Scanner on the given port and options.
// The port is opened during Open, at each baud rate being probed.
//
// Example:
//
//	port := serialport.New("/dev/ttyUSB0")
//	fps := scanner.New(port,
//	    scanner.WithBaudRate(115200),
//	    scanner.WithModel(scanner.GT521F52),
//	)
func New(port Port, opts ...Option) *Scanner {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Scanner{
		port:   port,
		config: cfg,
		poll:   rate.NewLimiter(rate.Every(cfg.PollInterval), 1),
		state:  StateUnstarted,
	}
}

// Config returns a copy of the scanner configuration.
func (s *Scanner) Config() Config {
	return s.config
}

// State returns the current session state.
func (s *Scanner) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Started reports whether negotiation completed.
func (s *Scanner) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// BaudRate returns the current link speed, or 0 before negotiation.
func (s *Scanner) BaudRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baud
}

// SessionID identifies the current session. It changes on every
// successful negotiation and is uuid.Nil before the first one.
func (s *Scanner) SessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// reportProgress calls the progress callback if configured.
func (s *Scanner) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// recordDiagnostic forwards d to the diagnostic sink and metrics.
func (s *Scanner) recordDiagnostic(d Diagnostic) {
	if s.config.Diagnostics != nil {
		s.config.Diagnostics.Record(d)
	}
	if s.config.Metrics != nil {
		s.config.Metrics.Diagnostic(d.Kind)
	}
}

func (s *Scanner) countCommand(op protocol.Opcode) {
	if s.config.Metrics != nil {
		s.config.Metrics.CommandSent(op)
	}
}

func (s *Scanner) countResponse(op protocol.Opcode, ack bool) {
	if s.config.Metrics != nil {
		s.config.Metrics.ResponseReceived(op, ack)
	}
}

func (s *Scanner) countBytes(direction string, n int) {
	if s.config.Metrics != nil {
		s.config.Metrics.BytesTransferred(direction, n)
	}
}

func (s *Scanner) countOverflow() {
	if s.config.Metrics != nil {
		s.config.Metrics.Overflow()
	}
}

func (s *Scanner) setBaud(rate int) {
	s.baud = rate
	if s.config.Metrics != nil {
		s.config.Metrics.BaudRate(rate)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Scanner) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Scanner) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Scanner) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
