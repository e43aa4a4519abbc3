package protocol

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "open command prefix",
			data:     []byte{0x55, 0xAA, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00},
			expected: 0x0101,
		},
		{
			name:     "ack response prefix",
			data:     []byte{0x55, 0xAA, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x30, 0x00},
			expected: 0x0130,
		},
		{
			name:     "wraps at 65536",
			data:     repeat(0xFF, 258),
			expected: uint16((258 * 0xFF) % 65536),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestChecksumFrom(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0x40, 0x50}

	// Accumulating in pieces must equal one pass
	partial := ChecksumFrom(0, data[:2])
	partial = ChecksumFrom(partial, data[2:])

	if whole := Checksum(data); partial != whole {
		t.Errorf("chunked checksum = 0x%04X, whole = 0x%04X", partial, whole)
	}
}

func TestChecksumDetectsSingleByteCorruption(t *testing.T) {
	prefix := NewCommand(CmdVerify1_1, 42).Bytes()[:ChecksumOffset]
	original := Checksum(prefix)

	for i := range prefix {
		corrupted := make([]byte, len(prefix))
		copy(corrupted, prefix)
		corrupted[i] ^= 0x01

		if Checksum(corrupted) == original {
			t.Errorf("mutating byte %d did not change the checksum", i)
		}
	}
}

func TestHighLowByte(t *testing.T) {
	tests := []struct {
		word uint16
		high byte
		low  byte
	}{
		{0x0000, 0x00, 0x00},
		{0x0130, 0x01, 0x30},
		{0xABCD, 0xAB, 0xCD},
		{0xFFFF, 0xFF, 0xFF},
	}

	for _, tt := range tests {
		if got := HighByte(tt.word); got != tt.high {
			t.Errorf("HighByte(0x%04X) = 0x%02X, want 0x%02X", tt.word, got, tt.high)
		}
		if got := LowByte(tt.word); got != tt.low {
			t.Errorf("LowByte(0x%04X) = 0x%02X, want 0x%02X", tt.word, got, tt.low)
		}
	}
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
