package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		high     byte
		low      byte
		expected ErrorCode
	}{
		{name: "zero high byte is not an error", high: 0x00, low: 0x09, expected: NoError},
		{name: "zero high byte with out of range low", high: 0x00, low: 0x99, expected: NoError},
		{name: "no error entry", high: 0x10, low: 0x00, expected: NoError},
		{name: "timeout", high: 0x10, low: 0x01, expected: NackTimeout},
		{name: "database full", high: 0x01, low: 0x09, expected: NackDBIsFull},
		{name: "any non-zero high byte", high: 0x7F, low: 0x0C, expected: NackBadFinger},
		{name: "last table entry", high: 0x10, low: 0x12, expected: NackFingerIsNotPressed},
		{name: "past the table", high: 0x10, low: 0x13, expected: InvalidError},
		{name: "far past the table", high: 0x01, low: 0x99, expected: InvalidError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseErrorCode(tt.high, tt.low); got != tt.expected {
				t.Errorf("ParseErrorCode(0x%02X, 0x%02X) = %s, want %s", tt.high, tt.low, got, tt.expected)
			}
		})
	}
}

func TestErrorTableMatchesWireValues(t *testing.T) {
	// Every NACK code is 0x1000 plus its table index
	for i, code := range errorTable {
		if i == 0 {
			continue
		}
		if uint16(code) != 0x1000+uint16(i) {
			t.Errorf("errorTable[%d] = 0x%04X, want 0x%04X", i, uint16(code), 0x1000+i)
		}
		if got := ParseErrorCode(HighByte(uint16(code)), LowByte(uint16(code))); got != code {
			t.Errorf("decoding 0x%04X gave %s", uint16(code), got)
		}
	}
	if len(errorTable) != 19 {
		t.Errorf("errorTable has %d entries, want 19", len(errorTable))
	}
}

func TestProtocolError(t *testing.T) {
	err := &ProtocolError{Operation: "enroll start", Code: NackDBIsFull}

	want := "enroll start failed: database is full (0x1009)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsProtocolError(err) {
		t.Error("IsProtocolError() = false for *ProtocolError")
	}
	if IsProtocolError(errors.New("other")) {
		t.Error("IsProtocolError() = true for plain error")
	}

	var target *ProtocolError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) || target.Code != NackDBIsFull {
		t.Error("errors.As did not unwrap ProtocolError")
	}
}

func TestErrorCodeString(t *testing.T) {
	if NackInvalidPos.String() != "invalid position" {
		t.Errorf("String() = %q", NackInvalidPos.String())
	}
	if ErrorCode(0x2000).String() != "unknown error code 0x2000" {
		t.Errorf("String() = %q", ErrorCode(0x2000).String())
	}
}
