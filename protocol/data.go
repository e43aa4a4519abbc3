package protocol

import "fmt"

// ChecksumScope selects which bytes the trailing data packet checksum covers.
type ChecksumScope int

const (
	// ChecksumPayload sums the payload bytes only. This is the form used by
	// current drivers and the default.
	ChecksumPayload ChecksumScope = iota

	// ChecksumHeaderAndPayload also sums the 4 header bytes, as the older
	// driver generation did.
	ChecksumHeaderAndPayload
)

func (s ChecksumScope) String() string {
	switch s {
	case ChecksumPayload:
		return "payload"
	case ChecksumHeaderAndPayload:
		return "header+payload"
	default:
		return fmt.Sprintf("ChecksumScope(%d)", int(s))
	}
}

// ParseChecksumScope converts a configuration string into a ChecksumScope.
func ParseChecksumScope(s string) (ChecksumScope, error) {
	switch s {
	case "", "payload":
		return ChecksumPayload, nil
	case "header+payload", "header":
		return ChecksumHeaderAndPayload, nil
	default:
		return 0, fmt.Errorf("unknown checksum scope %q (want payload or header+payload)", s)
	}
}

// DataHeader returns the 4-byte data packet header.
func DataHeader() [DataHeaderSize]byte {
	return [DataHeaderSize]byte{DataStartCode1, DataStartCode2, DeviceID1, DeviceID2}
}

// DataChecksumSeed returns the starting value of a data packet checksum
// for scope.
func DataChecksumSeed(scope ChecksumScope) uint16 {
	if scope == ChecksumHeaderAndPayload {
		h := DataHeader()
		return Checksum(h[:])
	}
	return 0
}

// DataChecksum computes the trailing checksum of a data packet.
func DataChecksum(payload []byte, scope ChecksumScope) uint16 {
	return ChecksumFrom(DataChecksumSeed(scope), payload)
}

// BuildDataPacket builds a complete outbound data packet.
//
// Packet structure:
//
//	[0x5A][0xA5][0x01][0x00][PAYLOAD...][CHECKSUM_L][CHECKSUM_H]
func BuildDataPacket(payload []byte, scope ChecksumScope) []byte {
	header := DataHeader()
	packet := make([]byte, 0, TransferLength(len(payload)))

	packet = append(packet, header[:]...)
	packet = append(packet, payload...)

	checksum := DataChecksum(payload, scope)
	packet = append(packet, LowByte(checksum), HighByte(checksum))

	return packet
}

// TransferLength returns the on-wire length of a data packet carrying
// payloadSize bytes: header, payload and checksum.
func TransferLength(payloadSize int) int {
	return DataHeaderSize + payloadSize + DataChecksumSize
}

// PlanChunks splits the part of a transfer that follows the 4-byte header
// into chunks of chunkSize bytes.
//
// The final chunk holds (totalLength-4) mod chunkSize bytes. An exact
// multiple yields a full-size final chunk, never an empty one.
//
// Example:
//
//	plan, _ := protocol.PlanChunks(498, 64)
//	// plan.Chunks == 8, plan.FinalChunk == 46
func PlanChunks(totalLength, chunkSize int) (ChunkPlan, error) {
	if chunkSize <= 0 {
		return ChunkPlan{}, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	body := totalLength - DataHeaderSize
	if body <= 0 {
		return ChunkPlan{}, fmt.Errorf("transfer length %d leaves no data after the %d-byte header",
			totalLength, DataHeaderSize)
	}

	chunks := body / chunkSize
	final := body % chunkSize
	if final != 0 {
		chunks++
	} else {
		final = chunkSize
	}

	return ChunkPlan{
		ChunkSize:  chunkSize,
		Chunks:     chunks,
		FinalChunk: final,
	}, nil
}

// CheckDataHeader compares a received data header against the expected
// constants. Mismatches are returned for reporting only.
func CheckDataHeader(header []byte) []FieldMismatch {
	expected := DataHeader()
	names := [DataHeaderSize]string{"data start code 1", "data start code 2", "data device id 1", "data device id 2"}

	var mismatches []FieldMismatch
	for i := 0; i < DataHeaderSize && i < len(header); i++ {
		if header[i] != expected[i] {
			mismatches = append(mismatches, FieldMismatch{
				Field:     names[i],
				Offset:    i,
				Expected:  expected[i],
				Alternate: expected[i],
				Actual:    header[i],
			})
		}
	}
	return mismatches
}
