package simulator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-gt511/protocol"
	"github.com/moffa90/go-gt511/scanner"
	"github.com/moffa90/go-gt511/simulator"
)

var _ scanner.Port = (*simulator.Device)(nil)

// roundTrip writes one command and reads back everything the device sent.
func roundTrip(t *testing.T, dev *simulator.Device, frame []byte) []byte {
	t.Helper()
	_, err := dev.Write(frame)
	require.NoError(t, err)
	return drain(t, dev)
}

func drain(t *testing.T, dev *simulator.Device) []byte {
	t.Helper()
	var out []byte
	for dev.Available() > 0 {
		b, err := dev.ReadByte()
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func parse(t *testing.T, frame []byte) *protocol.Response {
	t.Helper()
	require.Len(t, frame, protocol.FrameSize)
	resp, err := protocol.ParseResponse(frame)
	require.NoError(t, err)
	require.True(t, resp.Valid(), "mismatches: %v", resp.Mismatches)
	return resp
}

func TestDeviceIgnoresWrongBaudRate(t *testing.T) {
	dev := simulator.New(simulator.WithBaudRate(57600))
	require.NoError(t, dev.Open(9600))

	assert.Empty(t, roundTrip(t, dev, protocol.BuildOpenCmd()))

	require.NoError(t, dev.SetBaudRate(57600))
	resp := parse(t, roundTrip(t, dev, protocol.BuildOpenCmd()))
	assert.True(t, resp.ACK)
}

func TestDeviceChangeBaudRate(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))

	frame, err := protocol.BuildChangeBaudRateCmd(115200)
	require.NoError(t, err)

	resp := parse(t, roundTrip(t, dev, frame))
	assert.True(t, resp.ACK)
	assert.Equal(t, 115200, dev.BaudRate())
	assert.Equal(t, 9600, dev.HostBaudRate())
}

func TestDeviceClosedPort(t *testing.T) {
	dev := simulator.New()

	_, err := dev.Write(protocol.BuildOpenCmd())
	assert.ErrorIs(t, err, simulator.ErrClosed)

	require.NoError(t, dev.Open(9600))
	_, err = dev.ReadByte()
	assert.ErrorIs(t, err, simulator.ErrEmpty)

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.SetBaudRate(9600), simulator.ErrClosed)
}

func TestDeviceEnrollment(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))
	dev.PressFinger(7)

	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildEnrollStartCmd(4))).ACK)
	for step := 1; step <= 3; step++ {
		assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildCaptureFingerCmd(true))).ACK)
		frame, err := protocol.BuildEnrollCmd(step)
		require.NoError(t, err)
		assert.True(t, parse(t, roundTrip(t, dev, frame)).ACK, "step %d", step)
	}

	assert.Equal(t, 1, dev.EnrollCount())
	assert.Equal(t, simulator.Template(7), dev.Stored(4))

	// Same finger again is reported as a duplicate of slot 4
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildEnrollStartCmd(5))).ACK)
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildCaptureFingerCmd(true))).ACK)
	frame, _ := protocol.BuildEnrollCmd(1)
	resp := parse(t, roundTrip(t, dev, frame))
	assert.False(t, resp.ACK)
	assert.Equal(t, uint32(4), resp.ParameterValue())
}

func TestDeviceEnrollStartRefusals(t *testing.T) {
	dev := simulator.New(simulator.WithCapacity(2))
	require.NoError(t, dev.Open(9600))
	dev.Store(0, simulator.Template(1))

	resp := parse(t, roundTrip(t, dev, protocol.BuildEnrollStartCmd(0)))
	assert.Equal(t, protocol.NackIsAlreadyUsed, resp.Error)

	resp = parse(t, roundTrip(t, dev, protocol.BuildEnrollStartCmd(9)))
	assert.Equal(t, protocol.NackInvalidPos, resp.Error)

	dev.Store(1, simulator.Template(2))
	resp = parse(t, roundTrip(t, dev, protocol.BuildEnrollStartCmd(1)))
	assert.Equal(t, protocol.NackDBIsFull, resp.Error)
}

func TestDeviceIsPressFinger(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))

	resp := parse(t, roundTrip(t, dev, protocol.BuildIsPressFingerCmd()))
	assert.NotZero(t, resp.ParameterValue())

	dev.PressFinger(1)
	resp = parse(t, roundTrip(t, dev, protocol.BuildIsPressFingerCmd()))
	assert.Zero(t, resp.ParameterValue())
}

func TestDeviceGetTemplate(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))
	dev.Store(3, simulator.Template(3))

	out := roundTrip(t, dev, protocol.BuildGetTemplateCmd(3))
	require.Len(t, out, protocol.FrameSize+protocol.TransferLength(protocol.TemplateSize))
	assert.True(t, parse(t, out[:protocol.FrameSize]).ACK)

	packet := out[protocol.FrameSize:]
	assert.Empty(t, protocol.CheckDataHeader(packet[:protocol.DataHeaderSize]))
	assert.Equal(t, protocol.BuildDataPacket(simulator.Template(3), protocol.ChecksumPayload), packet)
}

func TestDeviceSetTemplate(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))

	tmpl := simulator.Template(11)
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildSetTemplateCmd(8, true))).ACK)
	resp := parse(t, roundTrip(t, dev, protocol.BuildDataPacket(tmpl, protocol.ChecksumPayload)))
	assert.True(t, resp.ACK)
	assert.Equal(t, tmpl, dev.Stored(8))

	// Duplicate check names the slot already holding the template
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildSetTemplateCmd(9, true))).ACK)
	resp = parse(t, roundTrip(t, dev, protocol.BuildDataPacket(tmpl, protocol.ChecksumPayload)))
	assert.False(t, resp.ACK)
	assert.Equal(t, uint32(8), resp.ParameterValue())

	// Without the check the copy is stored
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildSetTemplateCmd(9, false))).ACK)
	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildDataPacket(tmpl, protocol.ChecksumPayload))).ACK)
	assert.Equal(t, 2, dev.EnrollCount())
}

func TestDeviceSetTemplateChecksumScope(t *testing.T) {
	dev := simulator.New(simulator.WithChecksumScope(protocol.ChecksumHeaderAndPayload))
	require.NoError(t, dev.Open(9600))

	assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildSetTemplateCmd(0, false))).ACK)
	resp := parse(t, roundTrip(t, dev, protocol.BuildDataPacket(simulator.Template(1), protocol.ChecksumPayload)))
	assert.False(t, resp.ACK)
	assert.Equal(t, protocol.NackCommErr, resp.Error)
}

func TestDeviceFaultInjection(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))

	t.Run("queued nack", func(t *testing.T) {
		dev.QueueNack(protocol.CmdCmosLed, protocol.NackDevErr)
		resp := parse(t, roundTrip(t, dev, protocol.BuildSetLEDCmd(true)))
		assert.Equal(t, protocol.NackDevErr, resp.Error)
		assert.False(t, dev.LED())

		assert.True(t, parse(t, roundTrip(t, dev, protocol.BuildSetLEDCmd(true))).ACK)
		assert.True(t, dev.LED())
	})

	t.Run("noise", func(t *testing.T) {
		dev.InjectNoise([]byte{0x00, 0x55, 0x13})
		out := roundTrip(t, dev, protocol.BuildOpenCmd())
		require.Len(t, out, 3+protocol.FrameSize)
		assert.Equal(t, []byte{0x00, 0x55, 0x13}, out[:3])
		parse(t, out[3:])
	})

	t.Run("corruption", func(t *testing.T) {
		dev.CorruptNextResponse()
		resp, err := protocol.ParseResponse(roundTrip(t, dev, protocol.BuildOpenCmd()))
		require.NoError(t, err)
		assert.False(t, resp.Valid())
	})

	t.Run("silent", func(t *testing.T) {
		dev.SetSilent(true)
		assert.Empty(t, roundTrip(t, dev, protocol.BuildOpenCmd()))
		dev.SetSilent(false)
	})

	t.Run("overflow", func(t *testing.T) {
		dev.Store(0, simulator.Template(0))
		dev.InjectOverflow(10)
		_, err := dev.Write(protocol.BuildGetTemplateCmd(0))
		require.NoError(t, err)

		for i := 0; i < protocol.FrameSize+9; i++ {
			_, err := dev.ReadByte()
			require.NoError(t, err)
			assert.False(t, dev.Overflow())
		}
		_, err = dev.ReadByte()
		require.NoError(t, err)
		assert.True(t, dev.Overflow())
		assert.False(t, dev.Overflow(), "flag clears on read")
		drain(t, dev)
	})
}

func TestDeviceCommandLog(t *testing.T) {
	dev := simulator.New()
	require.NoError(t, dev.Open(9600))

	roundTrip(t, dev, protocol.BuildOpenCmd())
	roundTrip(t, dev, protocol.BuildDeleteIDCmd(12))

	assert.Equal(t, []protocol.Opcode{protocol.CmdOpen, protocol.CmdDeleteID}, dev.Commands())
	last, ok := dev.LastCommand()
	require.True(t, ok)
	assert.Equal(t, uint32(12), last.Value())
}

func TestTemplateDeterministic(t *testing.T) {
	assert.Len(t, simulator.Template(1), protocol.TemplateSize)
	assert.Equal(t, simulator.Template(1), simulator.Template(1))
	assert.NotEqual(t, simulator.Template(1), simulator.Template(2))
}

func TestImage(t *testing.T) {
	assert.Len(t, simulator.Image(1, protocol.ImageWidth, protocol.ImageHeight), protocol.ImageSize)
	assert.Len(t, simulator.Image(-1, protocol.RawImageWidth, protocol.RawImageHeight), protocol.RawImageSize)
	assert.NotEqual(t,
		simulator.Image(1, protocol.RawImageWidth, protocol.RawImageHeight),
		simulator.Image(2, protocol.RawImageWidth, protocol.RawImageHeight))
}
