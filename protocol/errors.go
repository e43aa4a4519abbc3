package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode is a device error decoded from a NACK response parameter.
type ErrorCode uint16

// Device error codes per GT-511C3 datasheet.
const (
	NoError                ErrorCode = 0x0000
	NackTimeout            ErrorCode = 0x1001
	NackInvalidBaudRate    ErrorCode = 0x1002
	NackInvalidPos         ErrorCode = 0x1003
	NackIsNotUsed          ErrorCode = 0x1004
	NackIsAlreadyUsed      ErrorCode = 0x1005
	NackCommErr            ErrorCode = 0x1006
	NackVerifyFailed       ErrorCode = 0x1007
	NackIdentifyFailed     ErrorCode = 0x1008
	NackDBIsFull           ErrorCode = 0x1009
	NackDBIsEmpty          ErrorCode = 0x100A
	NackTurnErr            ErrorCode = 0x100B
	NackBadFinger          ErrorCode = 0x100C
	NackEnrollFailed       ErrorCode = 0x100D
	NackIsNotSupported     ErrorCode = 0x100E
	NackDevErr             ErrorCode = 0x100F
	NackCaptureCanceled    ErrorCode = 0x1010
	NackInvalidParam       ErrorCode = 0x1011
	NackFingerIsNotPressed ErrorCode = 0x1012
	InvalidError           ErrorCode = 0xFFFF
)

// errorTable is indexed by the low parameter byte of a NACK.
var errorTable = [...]ErrorCode{
	NoError,
	NackTimeout,
	NackInvalidBaudRate,
	NackInvalidPos,
	NackIsNotUsed,
	NackIsAlreadyUsed,
	NackCommErr,
	NackVerifyFailed,
	NackIdentifyFailed,
	NackDBIsFull,
	NackDBIsEmpty,
	NackTurnErr,
	NackBadFinger,
	NackEnrollFailed,
	NackIsNotSupported,
	NackDevErr,
	NackCaptureCanceled,
	NackInvalidParam,
	NackFingerIsNotPressed,
}

// ParseErrorCode decodes an error code from the two low parameter bytes.
//
// A zero high byte means the response carries data, not an error, and
// yields NoError. Otherwise the low byte selects the error from the
// device table; values past the table yield InvalidError.
func ParseErrorCode(high, low byte) ErrorCode {
	if high == 0x00 {
		return NoError
	}
	if int(low) >= len(errorTable) {
		return InvalidError
	}
	return errorTable[low]
}

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "no error"
	case NackTimeout:
		return "timeout"
	case NackInvalidBaudRate:
		return "invalid baud rate"
	case NackInvalidPos:
		return "invalid position"
	case NackIsNotUsed:
		return "position is not used"
	case NackIsAlreadyUsed:
		return "position is already used"
	case NackCommErr:
		return "communication error"
	case NackVerifyFailed:
		return "verification failed"
	case NackIdentifyFailed:
		return "identification failed"
	case NackDBIsFull:
		return "database is full"
	case NackDBIsEmpty:
		return "database is empty"
	case NackTurnErr:
		return "invalid enrollment order"
	case NackBadFinger:
		return "bad finger"
	case NackEnrollFailed:
		return "enrollment failed"
	case NackIsNotSupported:
		return "command not supported"
	case NackDevErr:
		return "device error"
	case NackCaptureCanceled:
		return "capture canceled"
	case NackInvalidParam:
		return "invalid parameter"
	case NackFingerIsNotPressed:
		return "finger is not pressed"
	case InvalidError:
		return "invalid error code"
	default:
		return fmt.Sprintf("unknown error code 0x%04X", uint16(e))
	}
}

// ProtocolError represents a NACK that the calling operation has no
// specific result code for.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// Code is the decoded device error
	Code ErrorCode
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%04X)", e.Operation, e.Code, uint16(e.Code))
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
