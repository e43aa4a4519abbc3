package protocol

import "fmt"

// Response is a parsed 12-byte response frame.
type Response struct {
	// Raw holds the frame exactly as received
	Raw [FrameSize]byte

	// Parameter holds the 4 parameter bytes (little-endian)
	Parameter [ParameterSize]byte

	// ACK is true iff byte 8 equals AckCode
	ACK bool

	// Error is decoded from parameter bytes 0 and 1
	Error ErrorCode

	// Mismatches lists the structural bytes that did not match their
	// expected values. The frame is usable either way.
	Mismatches []FieldMismatch
}

// FieldMismatch describes one frame byte that differs from its expected value.
type FieldMismatch struct {
	// Field names the frame field, e.g. "start code 1" or "checksum low"
	Field string

	// Offset is the byte position within the frame
	Offset int

	// Expected is the expected value
	Expected byte

	// Alternate is a second accepted value (equal to Expected when there is none)
	Alternate byte

	// Actual is the received value
	Actual byte
}

func (m FieldMismatch) String() string {
	if m.Alternate != m.Expected {
		return fmt.Sprintf("%s at offset %d: expected 0x%02X or 0x%02X, got 0x%02X",
			m.Field, m.Offset, m.Expected, m.Alternate, m.Actual)
	}
	return fmt.Sprintf("%s at offset %d: expected 0x%02X, got 0x%02X",
		m.Field, m.Offset, m.Expected, m.Actual)
}

// ChunkPlan describes how a bulk receive is split into chunks.
type ChunkPlan struct {
	// ChunkSize is the size of every chunk except possibly the last
	ChunkSize int

	// Chunks is the total number of chunks, including the final one
	Chunks int

	// FinalChunk is the size of the last chunk. It equals ChunkSize when
	// the transfer is an exact multiple of the chunk size.
	FinalChunk int
}

// Total returns the number of bytes covered by the plan.
func (p ChunkPlan) Total() int {
	if p.Chunks == 0 {
		return 0
	}
	return (p.Chunks-1)*p.ChunkSize + p.FinalChunk
}

// ChunkLen returns the size of chunk i (zero-based).
func (p ChunkPlan) ChunkLen(i int) int {
	if i == p.Chunks-1 {
		return p.FinalChunk
	}
	return p.ChunkSize
}
