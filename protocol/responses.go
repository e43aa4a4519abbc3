package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseResponse decodes a 12-byte response frame.
//
// Response frame structure:
//
//	[0x55][0xAA][0x01][0x00][P0][P1][P2][P3][0x30|0x31][0x00][CHECKSUM_L][CHECKSUM_H]
//
// Parsing is best-effort: start codes, device ID, ack byte, reserved byte
// and checksum are all checked, but mismatches are only recorded in
// Response.Mismatches. The device is known to glitch the ack byte now and
// then, so a non-conformant frame is still returned. An error is returned
// only when frame is not exactly FrameSize bytes long.
func ParseResponse(frame []byte) (*Response, error) {
	if len(frame) != FrameSize {
		return nil, fmt.Errorf("response must be exactly %d bytes, got %d", FrameSize, len(frame))
	}

	r := &Response{}
	copy(r.Raw[:], frame)
	copy(r.Parameter[:], frame[4:8])

	checksum := Checksum(frame[:ChecksumOffset])

	r.check("start code 1", 0, CommandStartCode1, CommandStartCode1)
	r.check("start code 2", 1, CommandStartCode2, CommandStartCode2)
	r.check("device id 1", 2, DeviceID1, DeviceID1)
	r.check("device id 2", 3, DeviceID2, DeviceID2)
	r.check("ack", 8, AckCode, NackCode)
	r.check("reserved", 9, 0x00, 0x00)
	r.check("checksum low", 10, LowByte(checksum), LowByte(checksum))
	r.check("checksum high", 11, HighByte(checksum), HighByte(checksum))

	r.ACK = frame[8] == AckCode
	r.Error = ParseErrorCode(frame[5], frame[4])

	return r, nil
}

func (r *Response) check(field string, offset int, expected, alternate byte) {
	actual := r.Raw[offset]
	if actual == expected || actual == alternate {
		return
	}
	r.Mismatches = append(r.Mismatches, FieldMismatch{
		Field:     field,
		Offset:    offset,
		Expected:  expected,
		Alternate: alternate,
		Actual:    actual,
	})
}

// ParameterValue returns the parameter as a little-endian 32-bit value.
func (r *Response) ParameterValue() uint32 {
	return binary.LittleEndian.Uint32(r.Parameter[:])
}

// Valid reports whether the frame matched every structural expectation.
func (r *Response) Valid() bool {
	return len(r.Mismatches) == 0
}

// BuildResponse serializes a response frame. It is the device side of
// ParseResponse, used by simulators and tests.
func BuildResponse(ack bool, value uint32) []byte {
	frame := make([]byte, FrameSize)

	frame[0] = CommandStartCode1
	frame[1] = CommandStartCode2
	frame[2] = DeviceID1
	frame[3] = DeviceID2
	binary.LittleEndian.PutUint32(frame[4:8], value)
	if ack {
		frame[8] = AckCode
	} else {
		frame[8] = NackCode
	}
	frame[9] = 0x00

	checksum := Checksum(frame[:ChecksumOffset])
	frame[10] = LowByte(checksum)
	frame[11] = HighByte(checksum)

	return frame
}

// BuildNack serializes a NACK response carrying code.
func BuildNack(code ErrorCode) []byte {
	return BuildResponse(false, uint32(code))
}

// ParseCommand decodes a 12-byte command frame. It is the device side of
// Command.Bytes. Returns an error for a wrong length, bad start codes or a
// checksum mismatch.
func ParseCommand(frame []byte) (Command, error) {
	if len(frame) != FrameSize {
		return Command{}, fmt.Errorf("command must be exactly %d bytes, got %d", FrameSize, len(frame))
	}
	if frame[0] != CommandStartCode1 || frame[1] != CommandStartCode2 {
		return Command{}, fmt.Errorf("invalid start codes: 0x%02X 0x%02X", frame[0], frame[1])
	}

	expected := Checksum(frame[:ChecksumOffset])
	actual := binary.LittleEndian.Uint16(frame[10:12])
	if expected != actual {
		return Command{}, fmt.Errorf("checksum mismatch: got 0x%04X, expected 0x%04X", actual, expected)
	}

	var c Command
	copy(c.Parameter[:], frame[4:8])
	c.Opcode = Opcode(binary.LittleEndian.Uint16(frame[8:10]))
	return c, nil
}

// Value returns the command parameter as a little-endian 32-bit value.
func (c Command) Value() uint32 {
	return binary.LittleEndian.Uint32(c.Parameter[:])
}
