package protocol

import (
	"encoding/binary"
	"fmt"
)

// Command is an outbound command frame before serialization.
type Command struct {
	// Opcode is the command to execute
	Opcode Opcode

	// Parameter is the 4-byte command argument (little-endian)
	Parameter [ParameterSize]byte
}

// ParameterFrom splits a 32-bit value into little-endian parameter bytes.
func ParameterFrom(value uint32) [ParameterSize]byte {
	var p [ParameterSize]byte
	binary.LittleEndian.PutUint32(p[:], value)
	return p
}

// NewCommand creates a command with its parameter derived from value.
func NewCommand(op Opcode, value uint32) Command {
	return Command{Opcode: op, Parameter: ParameterFrom(value)}
}

// Bytes serializes the command into a 12-byte frame.
//
// Frame structure:
//
//	[0x55][0xAA][0x01][0x00][P0][P1][P2][P3][OP_L][OP_H][CHECKSUM_L][CHECKSUM_H]
func (c Command) Bytes() []byte {
	frame := make([]byte, FrameSize)

	frame[0] = CommandStartCode1
	frame[1] = CommandStartCode2
	frame[2] = DeviceID1
	frame[3] = DeviceID2
	copy(frame[4:8], c.Parameter[:])
	binary.LittleEndian.PutUint16(frame[8:10], uint16(c.Opcode))

	checksum := Checksum(frame[:ChecksumOffset])
	frame[10] = LowByte(checksum)
	frame[11] = HighByte(checksum)

	return frame
}

// BuildCommand serializes op with a parameter derived from value.
func BuildCommand(op Opcode, value uint32) []byte {
	return NewCommand(op, value).Bytes()
}

// BuildOpenCmd constructs an Open command frame.
// A zero parameter asks the device not to return its info block.
func BuildOpenCmd() []byte {
	return BuildCommand(CmdOpen, 0)
}

// BuildCloseCmd constructs a Close command frame.
func BuildCloseCmd() []byte {
	return BuildCommand(CmdClose, 0)
}

// BuildSetLEDCmd constructs a CmosLed command frame.
func BuildSetLEDCmd(on bool) []byte {
	return BuildCommand(CmdCmosLed, boolParameter(on))
}

// BuildChangeBaudRateCmd constructs a ChangeBaudRate command frame.
// Returns an error if rate is not one of BaudRates.
func BuildChangeBaudRateCmd(rate int) ([]byte, error) {
	if !ValidBaudRate(rate) {
		return nil, fmt.Errorf("unsupported baud rate %d, must be one of %v", rate, BaudRates)
	}
	return BuildCommand(CmdChangeBaudRate, uint32(rate)), nil
}

// BuildGetEnrollCountCmd constructs a GetEnrollCount command frame.
func BuildGetEnrollCountCmd() []byte {
	return BuildCommand(CmdGetEnrollCount, 0)
}

// BuildCheckEnrolledCmd constructs a CheckEnrolled command frame for id.
func BuildCheckEnrolledCmd(id uint16) []byte {
	return BuildCommand(CmdCheckEnrolled, uint32(id))
}

// BuildEnrollStartCmd constructs an EnrollStart command frame for id.
func BuildEnrollStartCmd(id uint16) []byte {
	return BuildCommand(CmdEnrollStart, uint32(id))
}

// BuildEnrollCmd constructs the command frame for enrollment step 1, 2 or 3.
func BuildEnrollCmd(step int) ([]byte, error) {
	switch step {
	case 1:
		return BuildCommand(CmdEnroll1, 0), nil
	case 2:
		return BuildCommand(CmdEnroll2, 0), nil
	case 3:
		return BuildCommand(CmdEnroll3, 0), nil
	default:
		return nil, fmt.Errorf("enroll step must be 1, 2 or 3, got %d", step)
	}
}

// BuildIsPressFingerCmd constructs an IsPressFinger command frame.
func BuildIsPressFingerCmd() []byte {
	return BuildCommand(CmdIsPressFinger, 0)
}

// BuildDeleteIDCmd constructs a DeleteID command frame for id.
func BuildDeleteIDCmd(id uint16) []byte {
	return BuildCommand(CmdDeleteID, uint32(id))
}

// BuildDeleteAllCmd constructs a DeleteAll command frame.
func BuildDeleteAllCmd() []byte {
	return BuildCommand(CmdDeleteAll, 0)
}

// BuildVerifyCmd constructs a Verify1_1 command frame for id.
func BuildVerifyCmd(id uint16) []byte {
	return BuildCommand(CmdVerify1_1, uint32(id))
}

// BuildIdentifyCmd constructs an Identify1_N command frame.
func BuildIdentifyCmd() []byte {
	return BuildCommand(CmdIdentify1_N, 0)
}

// BuildCaptureFingerCmd constructs a CaptureFinger command frame.
// High quality capture is slower and meant for enrollment.
func BuildCaptureFingerCmd(highQuality bool) []byte {
	return BuildCommand(CmdCaptureFinger, boolParameter(highQuality))
}

// BuildGetImageCmd constructs a GetImage command frame.
func BuildGetImageCmd() []byte {
	return BuildCommand(CmdGetImage, 0)
}

// BuildGetRawImageCmd constructs a GetRawImage command frame.
func BuildGetRawImageCmd() []byte {
	return BuildCommand(CmdGetRawImage, 0)
}

// BuildGetTemplateCmd constructs a GetTemplate command frame for id.
func BuildGetTemplateCmd(id uint16) []byte {
	return BuildCommand(CmdGetTemplate, uint32(id))
}

// BuildSetTemplateCmd constructs a SetTemplate command frame for id.
// Disabling the duplicate check sets the parameter high word to 0xFFFF.
func BuildSetTemplateCmd(id uint16, duplicateCheck bool) []byte {
	value := uint32(id)
	if !duplicateCheck {
		value += 0xFFFF0000
	}
	return BuildCommand(CmdSetTemplate, value)
}

func boolParameter(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
