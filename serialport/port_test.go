package serialport

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/moffa90/go-gt511/scanner"
)

var _ scanner.Port = (*Port)(nil)

// fakeSerial is an in-memory serial.Port. Methods the Port never calls
// fall through to the nil embedded interface.
type fakeSerial struct {
	serial.Port

	mu       sync.Mutex
	incoming chan []byte
	pending  []byte
	written  bytes.Buffer
	mode     *serial.Mode
	timeout  time.Duration
	closed   chan struct{}
	readErr  error
}

func newFakeSerial() *fakeSerial {
	return &fakeSerial{
		incoming: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	f.mu.Lock()
	err, timeout := f.readErr, f.timeout
	if err == nil && len(f.pending) > 0 {
		n := copy(p, f.pending)
		f.pending = f.pending[n:]
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}

	select {
	case data := <-f.incoming:
		n := copy(p, data)
		f.mu.Lock()
		f.pending = append(f.pending, data[n:]...)
		f.mu.Unlock()
		return n, nil
	case <-f.closed:
		return 0, errors.New("port closed")
	case <-time.After(timeout):
		return 0, nil
	}
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.Write(p)
}

func (f *fakeSerial) SetMode(mode *serial.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	return nil
}

func (f *fakeSerial) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = t
	return nil
}

func (f *fakeSerial) ResetInputBuffer() error { return nil }

func (f *fakeSerial) Close() error {
	close(f.closed)
	return nil
}

func (f *fakeSerial) baud() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode.BaudRate
}

// newTestPort returns a Port whose opener hands out fakes.
func newTestPort(opts ...Option) (*Port, *[]*fakeSerial) {
	var opened []*fakeSerial
	p := New("/dev/fake", append([]Option{WithReadTimeout(5 * time.Millisecond)}, opts...)...)
	p.open = func(name string, mode *serial.Mode) (serial.Port, error) {
		f := newFakeSerial()
		f.mode = mode
		opened = append(opened, f)
		return f, nil
	}
	return p, &opened
}

func TestPortNotOpen(t *testing.T) {
	p := New("/dev/fake")

	_, err := p.Write([]byte{0x55})
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, p.SetBaudRate(9600), ErrNotOpen)

	_, err = p.ReadByte()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, p.Close())
}

func TestPortOpenError(t *testing.T) {
	p := New("/dev/missing")
	p.open = func(string, *serial.Mode) (serial.Port, error) {
		return nil, errors.New("no such file")
	}

	err := p.Open(9600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/missing")
}

func TestPortReadWrite(t *testing.T) {
	p, opened := newTestPort()
	require.NoError(t, p.Open(38400))
	defer p.Close()

	fake := (*opened)[0]
	assert.Equal(t, 38400, fake.baud())
	assert.Equal(t, 8, fake.mode.DataBits)

	n, err := p.Write([]byte{0x55, 0xAA})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x55, 0xAA}, fake.written.Bytes())

	fake.incoming <- []byte{0x01, 0x02, 0x03}
	require.Eventually(t, func() bool { return p.Available() == 3 }, time.Second, time.Millisecond)

	for _, want := range []byte{0x01, 0x02, 0x03} {
		b, err := p.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}

	_, err = p.ReadByte()
	assert.ErrorIs(t, err, ErrEmpty)
	assert.False(t, p.Overflow())
}

func TestPortFullBufferHoldsBack(t *testing.T) {
	p, opened := newTestPort(WithBufferSize(4))
	require.NoError(t, p.Open(9600))
	defer p.Close()

	fake := (*opened)[0]
	fake.incoming <- []byte{1, 2, 3}
	fake.incoming <- []byte{4, 5, 6}
	require.Eventually(t, func() bool { return p.Available() == 4 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 4, p.Available(), "reader stops at the buffer size")
	assert.False(t, p.Overflow(), "nothing was lost")

	var got []byte
	require.Eventually(t, func() bool {
		for p.Available() > 0 {
			b, err := p.ReadByte()
			require.NoError(t, err)
			got = append(got, b)
		}
		return len(got) == 6
	}, time.Second, time.Millisecond)

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, got, "held back bytes arrive once there is room")
	assert.False(t, p.Overflow())
}

func TestPortPushOverflow(t *testing.T) {
	p := New("/dev/fake", WithBufferSize(4))
	p.buf = make([]byte, 0, 4)

	p.push([]byte{1, 2, 3})
	p.push([]byte{4, 5, 6})

	assert.True(t, p.Overflow())
	assert.False(t, p.Overflow(), "flag clears on read")
	assert.Equal(t, []byte{1, 2, 3, 4}, p.buf, "bytes past the buffer are dropped")
}

func TestPortSetBaudRate(t *testing.T) {
	p, opened := newTestPort()
	require.NoError(t, p.Open(9600))
	defer p.Close()

	require.NoError(t, p.SetBaudRate(115200))
	assert.Equal(t, 115200, (*opened)[0].baud())
}

func TestPortReopen(t *testing.T) {
	p, opened := newTestPort()
	require.NoError(t, p.Open(9600))

	(*opened)[0].incoming <- []byte{0xEE}
	require.Eventually(t, func() bool { return p.Available() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, p.Open(19200))
	defer p.Close()

	require.Len(t, *opened, 2)
	assert.Zero(t, p.Available(), "reopen discards input")
	assert.Equal(t, 19200, (*opened)[1].baud())

	select {
	case <-(*opened)[0].closed:
	default:
		t.Fatal("previous port not closed")
	}
}

func TestPortReadError(t *testing.T) {
	p, opened := newTestPort()
	fakeErr := errors.New("device unplugged")

	require.NoError(t, p.Open(9600))
	defer p.Close()

	fake := (*opened)[0]
	fake.mu.Lock()
	fake.readErr = fakeErr
	fake.mu.Unlock()

	require.Eventually(t, func() bool {
		_, err := p.ReadByte()
		return errors.Is(err, fakeErr)
	}, time.Second, time.Millisecond)
}
