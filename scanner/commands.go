package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/moffa90/go-gt511/protocol"
)

// Open initializes the device. The first call negotiates the baud rate,
// which may take a few seconds when the device is not at the desired rate.
//
// A device that answers at no rate yields an error wrapping ErrNoResponse.
//
// Example:
//
//	ok, err := fps.Open(ctx)
//	if errors.Is(err, scanner.ErrNoResponse) {
//	    log.Fatal("scanner not connected")
//	}
func (s *Scanner) Open(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if err := s.start(ctx); err != nil {
			return false, fmt.Errorf("open: %w", err)
		}
	}

	resp, err := s.exchange(ctx, "open", protocol.BuildOpenCmd())
	if err != nil {
		return false, err
	}
	return resp.ACK, nil
}

// Close sends the Close command and releases the port. The device does
// nothing on Close, so its response is not checked. The next Open
// negotiates again.
func (s *Scanner) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		if _, err := s.exchange(ctx, "close", protocol.BuildCloseCmd()); err != nil {
			s.logDebug("close not acknowledged", "error", err)
		}
	}

	s.started = false
	s.state = StateUnstarted
	s.session = uuid.Nil
	s.baud = 0

	return s.port.Close()
}

// SetLED turns the sensor backlight on or off.
func (s *Scanner) SetLED(ctx context.Context, on bool) (bool, error) {
	return s.simple(ctx, "set led", protocol.BuildSetLEDCmd(on))
}

// ChangeBaudRate moves the device and the local port to rate.
// Rates outside protocol.BaudRates are rejected with an
// *InvalidBaudRateError before anything is sent. On NACK the local port
// keeps its current rate.
func (s *Scanner) ChangeBaudRate(ctx context.Context, rate int) (bool, error) {
	if !protocol.ValidBaudRate(rate) {
		return false, &InvalidBaudRateError{Rate: rate}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return false, ErrNotStarted
	}
	return s.changeBaudRate(ctx, rate)
}

func (s *Scanner) changeBaudRate(ctx context.Context, rate int) (bool, error) {
	frame, err := protocol.BuildChangeBaudRateCmd(rate)
	if err != nil {
		return false, &InvalidBaudRateError{Rate: rate}
	}

	resp, err := s.exchange(ctx, "change baud rate", frame)
	if err != nil {
		return false, err
	}
	if !resp.ACK {
		s.logError("baud rate change rejected", "rate", rate, "error", resp.Error.String())
		return false, nil
	}

	if err := s.port.SetBaudRate(rate); err != nil {
		return false, fmt.Errorf("change baud rate: switch port to %d: %w", rate, err)
	}
	s.setBaud(rate)
	s.logInfo("baud rate changed", "rate", rate)

	return true, nil
}

// GetEnrollCount returns the number of enrolled fingerprints.
func (s *Scanner) GetEnrollCount(ctx context.Context) (int, error) {
	resp, err := s.command(ctx, "get enroll count", protocol.BuildGetEnrollCountCmd())
	if err != nil {
		return 0, err
	}
	return int(resp.ParameterValue()), nil
}

// CheckEnrolled reports whether id holds a fingerprint.
func (s *Scanner) CheckEnrolled(ctx context.Context, id uint16) (bool, error) {
	return s.simple(ctx, "check enrolled", protocol.BuildCheckEnrolledCmd(id))
}

// EnrollStart begins enrolling a fingerprint into id.
func (s *Scanner) EnrollStart(ctx context.Context, id uint16) (EnrollStartResult, error) {
	resp, err := s.command(ctx, "enroll start", protocol.BuildEnrollStartCmd(id))
	if err != nil {
		return EnrollStartUnknown, err
	}
	if resp.ACK {
		return EnrollStartOK, nil
	}

	switch resp.Error {
	case protocol.NackDBIsFull:
		return EnrollStartDatabaseFull, nil
	case protocol.NackInvalidPos:
		return EnrollStartInvalidPosition, nil
	case protocol.NackIsAlreadyUsed:
		return EnrollStartAlreadyUsed, nil
	}
	return EnrollStartUnknown, &protocol.ProtocolError{Operation: "enroll start", Code: resp.Error}
}

// Enroll1 takes the first of three enrollment scans.
// CaptureFinger must be called with high quality before each step.
func (s *Scanner) Enroll1(ctx context.Context) (EnrollResult, error) {
	return s.enroll(ctx, 1)
}

// Enroll2 takes the second enrollment scan.
func (s *Scanner) Enroll2(ctx context.Context) (EnrollResult, error) {
	return s.enroll(ctx, 2)
}

// Enroll3 takes the third enrollment scan and stores the merged template.
func (s *Scanner) Enroll3(ctx context.Context) (EnrollResult, error) {
	return s.enroll(ctx, 3)
}

func (s *Scanner) enroll(ctx context.Context, step int) (EnrollResult, error) {
	frame, err := protocol.BuildEnrollCmd(step)
	if err != nil {
		return EnrollUnknown, err
	}

	operation := fmt.Sprintf("enroll %d", step)
	resp, err := s.command(ctx, operation, frame)
	if err != nil {
		return EnrollUnknown, err
	}
	if resp.ACK {
		return EnrollOK, nil
	}

	switch resp.Error {
	case protocol.NackEnrollFailed:
		return EnrollFailed, nil
	case protocol.NackBadFinger:
		return EnrollBadFinger, nil
	}
	// A NACK carrying an ID below capacity names the existing enrollment
	if resp.ParameterValue() < uint32(s.config.Capacity) {
		return EnrollDuplicate, nil
	}
	return EnrollUnknown, &protocol.ProtocolError{Operation: operation, Code: resp.Error}
}

// IsPressFinger reports whether a finger is on the sensor.
func (s *Scanner) IsPressFinger(ctx context.Context) (bool, error) {
	resp, err := s.command(ctx, "is press finger", protocol.BuildIsPressFingerCmd())
	if err != nil {
		return false, err
	}
	return resp.Parameter == [protocol.ParameterSize]byte{}, nil
}

// DeleteID deletes the fingerprint stored at id.
// Returns false if the position is invalid.
func (s *Scanner) DeleteID(ctx context.Context, id uint16) (bool, error) {
	return s.simple(ctx, "delete id", protocol.BuildDeleteIDCmd(id))
}

// DeleteAll deletes every enrolled fingerprint.
// Returns false if the database is empty.
func (s *Scanner) DeleteAll(ctx context.Context) (bool, error) {
	return s.simple(ctx, "delete all", protocol.BuildDeleteAllCmd())
}

// Verify1_1 checks the captured finger against the fingerprint at id.
func (s *Scanner) Verify1_1(ctx context.Context, id uint16) (VerifyResult, error) {
	resp, err := s.command(ctx, "verify", protocol.BuildVerifyCmd(id))
	if err != nil {
		return VerifyFailed, err
	}
	if resp.ACK {
		return VerifyOK, nil
	}

	switch resp.Error {
	case protocol.NackInvalidPos:
		return VerifyInvalidPosition, nil
	case protocol.NackIsNotUsed:
		return VerifyNotUsed, nil
	default:
		return VerifyFailed, nil
	}
}

// Identify1_N checks the captured finger against the whole database.
// Returns the matching ID, or the model capacity (200 or 3000) when the
// finger is not found.
func (s *Scanner) Identify1_N(ctx context.Context) (int, error) {
	resp, err := s.command(ctx, "identify", protocol.BuildIdentifyCmd())
	if err != nil {
		return s.config.Capacity, err
	}

	id := resp.ParameterValue()
	if id > uint32(s.config.Capacity) {
		return s.config.Capacity, nil
	}
	return int(id), nil
}

// CaptureFinger captures the finger on the sensor into device RAM. Use
// high quality for enrollment and low quality for verification.
// Returns false if no finger is pressed.
func (s *Scanner) CaptureFinger(ctx context.Context, highQuality bool) (bool, error) {
	return s.simple(ctx, "capture finger", protocol.BuildCaptureFingerCmd(highQuality))
}

// GetImage downloads the captured fingerprint image (258x202, 8 bits per
// pixel) and streams it to w. Returns false without a transfer if the
// device refuses.
//
// At low baud rates the download takes minutes; keep the chunk size at or
// below the host receive buffer to avoid overflows.
func (s *Scanner) GetImage(ctx context.Context, w io.Writer) (bool, error) {
	return s.download(ctx, "get image", protocol.BuildGetImageCmd(), protocol.ImageSize, w)
}

// GetRawImage captures and downloads a raw image (160x120, 8 bits per
// pixel), streaming it to w.
func (s *Scanner) GetRawImage(ctx context.Context, w io.Writer) (bool, error) {
	return s.download(ctx, "get raw image", protocol.BuildGetRawImageCmd(), protocol.RawImageSize, w)
}

func (s *Scanner) download(ctx context.Context, operation string, frame []byte, size int, w io.Writer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return false, ErrNotStarted
	}

	resp, err := s.exchange(ctx, operation, frame)
	if err != nil {
		return false, err
	}
	if !resp.ACK {
		return false, nil
	}

	if err := s.receiveData(ctx, operation, size, w); err != nil {
		return false, err
	}
	return true, nil
}

// GetTemplate downloads the template stored at id.
//
// A receive buffer overflow yields TemplateDownloadFailed with a nil
// error; the channel is drained and ready for the next command.
//
// Example:
//
//	tmpl, result, err := fps.GetTemplate(ctx, 3)
//	if err == nil && result == scanner.TemplateOK {
//	    os.WriteFile("id3.tmpl", tmpl, 0o644)
//	}
func (s *Scanner) GetTemplate(ctx context.Context, id uint16) ([]byte, TemplateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, TemplateUnknown, ErrNotStarted
	}

	resp, err := s.exchange(ctx, "get template", protocol.BuildGetTemplateCmd(id))
	if err != nil {
		return nil, TemplateUnknown, err
	}

	if !resp.ACK {
		switch resp.Error {
		case protocol.NackInvalidPos:
			return nil, TemplateInvalidPosition, nil
		case protocol.NackIsNotUsed:
			return nil, TemplateNotUsed, nil
		}
		return nil, TemplateUnknown, &protocol.ProtocolError{Operation: "get template", Code: resp.Error}
	}

	var buf bytes.Buffer
	buf.Grow(protocol.TemplateSize)
	if err := s.receiveData(ctx, "get template", protocol.TemplateSize, &buf); err != nil {
		var overflow *OverflowError
		if errors.As(err, &overflow) {
			return nil, TemplateDownloadFailed, nil
		}
		return nil, TemplateUnknown, err
	}

	return buf.Bytes(), TemplateOK, nil
}

// SetTemplate uploads a template to id. With duplicateCheck the device
// refuses a template that matches an existing enrollment.
//
// The upload is a two-step exchange: the command is acknowledged, then
// the data packet is sent and acknowledged separately.
func (s *Scanner) SetTemplate(ctx context.Context, template []byte, id uint16, duplicateCheck bool) (SetTemplateResult, error) {
	if len(template) != protocol.TemplateSize {
		return SetTemplateUndefined, fmt.Errorf("template must be exactly %d bytes, got %d",
			protocol.TemplateSize, len(template))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return SetTemplateUndefined, ErrNotStarted
	}

	resp, err := s.exchange(ctx, "set template", protocol.BuildSetTemplateCmd(id, duplicateCheck))
	if err != nil {
		return SetTemplateUndefined, err
	}
	if !resp.ACK {
		return SetTemplateInvalidPosition, nil
	}

	resp, err = s.sendData(ctx, "set template", template)
	if err != nil {
		return SetTemplateUndefined, err
	}
	if resp.ACK {
		return SetTemplateOK, nil
	}

	if resp.ParameterValue() < uint32(s.config.Capacity) {
		return SetTemplateDuplicate, nil
	}
	switch resp.Error {
	case protocol.NackCommErr:
		return SetTemplateCommError, nil
	case protocol.NackDevErr:
		return SetTemplateDeviceError, nil
	default:
		return SetTemplateUndefined, nil
	}
}

// command runs a single command/response exchange on a started session.
func (s *Scanner) command(ctx context.Context, operation string, frame []byte) (*protocol.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.exchange(ctx, operation, frame)
}

// simple runs a command whose only result is the ACK flag.
func (s *Scanner) simple(ctx context.Context, operation string, frame []byte) (bool, error) {
	resp, err := s.command(ctx, operation, frame)
	if err != nil {
		return false, err
	}
	return resp.ACK, nil
}
