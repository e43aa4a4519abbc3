package scanner

import "fmt"

// EnrollStartResult is the outcome of EnrollStart.
type EnrollStartResult int

const (
	EnrollStartOK              EnrollStartResult = 0
	EnrollStartDatabaseFull    EnrollStartResult = 1
	EnrollStartInvalidPosition EnrollStartResult = 2
	EnrollStartAlreadyUsed     EnrollStartResult = 3
)

func (r EnrollStartResult) String() string {
	switch r {
	case EnrollStartOK:
		return "ok"
	case EnrollStartDatabaseFull:
		return "database full"
	case EnrollStartInvalidPosition:
		return "invalid position"
	case EnrollStartAlreadyUsed:
		return "position already used"
	default:
		return fmt.Sprintf("EnrollStartResult(%d)", int(r))
	}
}

// EnrollResult is the outcome of Enroll1, Enroll2 and Enroll3.
type EnrollResult int

const (
	EnrollOK        EnrollResult = 0
	EnrollFailed    EnrollResult = 1
	EnrollBadFinger EnrollResult = 2
	// EnrollDuplicate means the finger is already enrolled; the
	// response parameter carries the existing ID
	EnrollDuplicate EnrollResult = 3
)

func (r EnrollResult) String() string {
	switch r {
	case EnrollOK:
		return "ok"
	case EnrollFailed:
		return "enroll failed"
	case EnrollBadFinger:
		return "bad finger"
	case EnrollDuplicate:
		return "already enrolled"
	default:
		return fmt.Sprintf("EnrollResult(%d)", int(r))
	}
}

// VerifyResult is the outcome of Verify1_1.
type VerifyResult int

const (
	VerifyOK              VerifyResult = 0
	VerifyInvalidPosition VerifyResult = 1
	VerifyNotUsed         VerifyResult = 2
	VerifyFailed          VerifyResult = 3
)

func (r VerifyResult) String() string {
	switch r {
	case VerifyOK:
		return "verified"
	case VerifyInvalidPosition:
		return "invalid position"
	case VerifyNotUsed:
		return "id not in use"
	case VerifyFailed:
		return "not verified"
	default:
		return fmt.Sprintf("VerifyResult(%d)", int(r))
	}
}

// TemplateResult is the outcome of GetTemplate.
type TemplateResult int

const (
	TemplateOK              TemplateResult = 0
	TemplateInvalidPosition TemplateResult = 1
	TemplateNotUsed         TemplateResult = 2
	// TemplateDownloadFailed means the host receive buffer overflowed
	TemplateDownloadFailed TemplateResult = 3
)

func (r TemplateResult) String() string {
	switch r {
	case TemplateOK:
		return "ok"
	case TemplateInvalidPosition:
		return "invalid position"
	case TemplateNotUsed:
		return "id not in use"
	case TemplateDownloadFailed:
		return "download failed"
	default:
		return fmt.Sprintf("TemplateResult(%d)", int(r))
	}
}

// SetTemplateResult is the outcome of SetTemplate.
type SetTemplateResult int

const (
	SetTemplateOK              SetTemplateResult = 0
	SetTemplateDuplicate       SetTemplateResult = 1
	SetTemplateInvalidPosition SetTemplateResult = 2
	SetTemplateCommError       SetTemplateResult = 3
	SetTemplateDeviceError     SetTemplateResult = 4
	// SetTemplateUndefined covers any other NACK to the uploaded data
	SetTemplateUndefined SetTemplateResult = 5
)

func (r SetTemplateResult) String() string {
	switch r {
	case SetTemplateOK:
		return "ok"
	case SetTemplateDuplicate:
		return "duplicate"
	case SetTemplateInvalidPosition:
		return "invalid position"
	case SetTemplateCommError:
		return "communication error"
	case SetTemplateDeviceError:
		return "device error"
	case SetTemplateUndefined:
		return "undefined error"
	default:
		return fmt.Sprintf("SetTemplateResult(%d)", int(r))
	}
}

// Results returned together with an error, such as a *protocol.ProtocolError
// for a NACK the operation has no result code for.
const (
	EnrollStartUnknown EnrollStartResult = -1
	EnrollUnknown      EnrollResult      = -1
	TemplateUnknown    TemplateResult    = -1
)
