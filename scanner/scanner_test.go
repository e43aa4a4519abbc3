package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/simulator"
)

// MockLogger records log messages for testing
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) { l.add("DEBUG: " + msg) }
func (l *MockLogger) Info(msg string, kv ...interface{})  { l.add("INFO: " + msg) }
func (l *MockLogger) Error(msg string, kv ...interface{}) { l.add("ERROR: " + msg) }

func (l *MockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *MockLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// MockMetrics counts what the scanner reports
type MockMetrics struct {
	mu          sync.Mutex
	commands    map[protocol.Opcode]int
	acks        int
	nacks       int
	diagnostics map[string]int
	bytes       map[string]int
	overflows   int
	rates       []int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		commands:    make(map[protocol.Opcode]int),
		diagnostics: make(map[string]int),
		bytes:       make(map[string]int),
	}
}

func (m *MockMetrics) CommandSent(op protocol.Opcode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[op]++
}

func (m *MockMetrics) ResponseReceived(op protocol.Opcode, ack bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ack {
		m.acks++
	} else {
		m.nacks++
	}
}

func (m *MockMetrics) Diagnostic(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diagnostics[kind]++
}

func (m *MockMetrics) BytesTransferred(direction string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes[direction] += n
}

func (m *MockMetrics) Overflow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overflows++
}

func (m *MockMetrics) BaudRate(rate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, rate)
}

// diagnostics collects recorded diagnostics
type diagnostics struct {
	mu   sync.Mutex
	list []Diagnostic
}

func (d *diagnostics) Record(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = append(d.list, diag)
}

func (d *diagnostics) kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]string, len(d.list))
	for i, diag := range d.list {
		kinds[i] = diag.Kind
	}
	return kinds
}

// fastOptions keep negotiation and timeouts short against the simulator.
func fastOptions(opts ...Option) []Option {
	return append([]Option{
		WithProbe(time.Millisecond, 3),
		WithPollInterval(0),
		WithDrainDelay(0),
		WithReadTimeout(100 * time.Millisecond),
	}, opts...)
}

// openScanner returns a started scanner talking to dev.
func openScanner(t *testing.T, dev *simulator.Device, opts ...Option) *Scanner {
	t.Helper()
	fps := New(dev, fastOptions(opts...)...)
	ok, err := fps.Open(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return fps
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		fps := New(simulator.New())
		cfg := fps.Config()

		assert.Equal(t, 9600, cfg.BaudRate)
		assert.Equal(t, 64, cfg.ChunkSize)
		assert.Equal(t, 200, cfg.Capacity)
		assert.Equal(t, protocol.ChecksumPayload, cfg.ChecksumScope)
		assert.Equal(t, 25*time.Millisecond, cfg.ProbeInterval)
		assert.Equal(t, 100, cfg.ProbeAttempts)
		assert.Equal(t, StateUnstarted, fps.State())
		assert.False(t, fps.Started())
		assert.Zero(t, fps.BaudRate())
		assert.Equal(t, uuid.Nil, fps.SessionID())
	})

	t.Run("with options", func(t *testing.T) {
		fps := New(simulator.New(),
			WithBaudRate(115200),
			WithModel(GT521F52),
			WithChunkSize(protocol.LegacyChunkSize),
			WithChecksumScope(protocol.ChecksumHeaderAndPayload),
			WithReadTimeout(2*time.Second),
		)
		cfg := fps.Config()

		assert.Equal(t, 115200, cfg.BaudRate)
		assert.Equal(t, 3000, cfg.Capacity)
		assert.Equal(t, 128, cfg.ChunkSize)
		assert.Equal(t, protocol.ChecksumHeaderAndPayload, cfg.ChecksumScope)
		assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		fps := New(simulator.New(),
			WithBaudRate(12345),
			WithChunkSize(0),
			WithCapacity(-1),
			WithReadTimeout(0),
		)
		cfg := fps.Config()

		assert.Equal(t, 9600, cfg.BaudRate)
		assert.Equal(t, 64, cfg.ChunkSize)
		assert.Equal(t, 200, cfg.Capacity)
		assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	})

	t.Run("nil port panics", func(t *testing.T) {
		assert.Panics(t, func() { New(nil) })
	})
}

func TestOpenNegotiatesBaudRate(t *testing.T) {
	dev := simulator.New(simulator.WithBaudRate(38400))
	metrics := NewMockMetrics()
	fps := openScanner(t, dev, WithBaudRate(9600), WithMetrics(metrics))

	assert.Equal(t, StateReady, fps.State())
	assert.True(t, fps.Started())
	assert.Equal(t, 9600, fps.BaudRate())
	assert.NotEqual(t, uuid.Nil, fps.SessionID())

	assert.Equal(t, 9600, dev.BaudRate())
	assert.Equal(t, 9600, dev.HostBaudRate())

	// Probes at 9600 and 19200 never reached the device
	assert.Equal(t, []protocol.Opcode{
		protocol.CmdOpen,
		protocol.CmdChangeBaudRate,
		protocol.CmdOpen,
	}, dev.Commands())

	assert.Equal(t, []int{38400, 9600}, metrics.rates)
	assert.Equal(t, 4, metrics.commands[protocol.CmdOpen], "three probes and the final open")
}

func TestOpenAtDesiredRate(t *testing.T) {
	dev := simulator.New(simulator.WithBaudRate(115200))
	fps := openScanner(t, dev, WithBaudRate(115200))

	assert.Equal(t, 115200, fps.BaudRate())
	assert.Equal(t, []protocol.Opcode{protocol.CmdOpen, protocol.CmdOpen}, dev.Commands())

	// A second Open does not negotiate again
	session := fps.SessionID()
	ok, err := fps.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, session, fps.SessionID())
	assert.Len(t, dev.Commands(), 3)
}

func TestOpenNoResponse(t *testing.T) {
	dev := simulator.New()
	dev.SetSilent(true)
	logger := &MockLogger{}

	fps := New(dev, fastOptions(WithLogger(logger))...)
	start := time.Now()
	ok, err := fps.Open(context.Background())

	require.Error(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.Is(err, ErrNoResponse))

	var noResp *NoResponseError
	require.True(t, errors.As(err, &noResp))
	assert.Equal(t, protocol.BaudRates, noResp.Rates)
	assert.Equal(t, len(protocol.BaudRates), noResp.Polls, "one empty poll ends each rate")

	assert.Equal(t, StateNoResponse, fps.State())
	assert.False(t, fps.Started())
	assert.Contains(t, logger.Messages(), "ERROR: scanner did not answer at any baud rate")
}

func TestOpenCancelled(t *testing.T) {
	dev := simulator.New()
	dev.SetSilent(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fps := New(dev, fastOptions()...)
	_, err := fps.Open(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateUnstarted, fps.State())
}

func TestOpenRetuneRefused(t *testing.T) {
	dev := simulator.New(simulator.WithBaudRate(19200))
	dev.QueueNack(protocol.CmdChangeBaudRate, protocol.NackInvalidBaudRate)

	fps := New(dev, fastOptions(WithBaudRate(57600))...)
	_, err := fps.Open(context.Background())

	require.Error(t, err)
	assert.True(t, protocol.IsProtocolError(err))
	assert.False(t, fps.Started())
	assert.Equal(t, StateRetuning, fps.State())
	assert.Equal(t, 19200, dev.BaudRate())
}

func TestOperationsRequireOpen(t *testing.T) {
	fps := New(simulator.New(), fastOptions()...)
	ctx := context.Background()

	_, err := fps.SetLED(ctx, true)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = fps.GetEnrollCount(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = fps.ChangeBaudRate(ctx, 115200)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, _, err = fps.GetTemplate(ctx, 0)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = fps.SetTemplate(ctx, make([]byte, protocol.TemplateSize), 0, false)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = fps.GetImage(ctx, nil)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestClose(t *testing.T) {
	dev := simulator.New()
	fps := openScanner(t, dev)

	require.NoError(t, fps.Close(context.Background()))
	assert.Equal(t, StateUnstarted, fps.State())
	assert.False(t, fps.Started())
	assert.Equal(t, uuid.Nil, fps.SessionID())

	last, ok := dev.LastCommand()
	require.True(t, ok)
	assert.Equal(t, protocol.CmdClose, last.Opcode)

	_, err := fps.SetLED(context.Background(), true)
	assert.ErrorIs(t, err, ErrNotStarted)

	// Reopening negotiates a new session
	ok, err = fps.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateReady, fps.State())
	assert.NotEqual(t, uuid.Nil, fps.SessionID())
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{StateUnstarted, "unstarted"},
		{StateProbing, "probing"},
		{StateSynced, "synced"},
		{StateRetuning, "retuning"},
		{StateReady, "ready"},
		{StateNoResponse, "no response"},
		{SessionState(42), "SessionState(42)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&NoResponseError{Rates: []int{9600}, Polls: 3}, "no response from scanner at any of [9600] baud after 3 polls"},
		{&OverflowError{Operation: "get template", Received: 100, Expected: 504}, "get template: receive buffer overflow after 100 of 504 bytes"},
		{&InvalidBaudRateError{Rate: 300}, "invalid baud rate 300"},
		{&TimeoutError{Operation: "open", After: time.Second}, "open: timed out after 1s waiting for the scanner"},
		{&DataChecksumError{Operation: "get template", Expected: 0x1234, Actual: 0x4321}, "get template: data checksum mismatch: expected 0x1234, got 0x4321"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
