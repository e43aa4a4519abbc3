package scanner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moffa90/go-gt511/protocol"
)

// SessionState is the state of baud negotiation.
type SessionState int

const (
	// StateUnstarted means Open has not run yet
	StateUnstarted SessionState = iota

	// StateProbing means the baud ladder is being scanned
	StateProbing

	// StateSynced means the device answered at some rate
	StateSynced

	// StateRetuning means the device is being moved to the desired rate
	StateRetuning

	// StateReady means the session is usable
	StateReady

	// StateNoResponse means the device answered at no rate
	StateNoResponse
)

func (s SessionState) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateProbing:
		return "probing"
	case StateSynced:
		return "synced"
	case StateRetuning:
		return "retuning"
	case StateReady:
		return "ready"
	case StateNoResponse:
		return "no response"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// start negotiates the link speed:
//  1. Probe each ladder rate with an Open command until the device answers
//  2. Retune the device to the desired rate if it answered at another one
//  3. Mark the session started
//
// Without any answer the session enters StateNoResponse and a
// *NoResponseError is returned. Callers must hold s.mu.
func (s *Scanner) start(ctx context.Context) error {
	desired := s.config.BaudRate
	if !protocol.ValidBaudRate(desired) {
		desired = protocol.DefaultBaudRate
	}

	s.state = StateProbing
	s.started = false

	found, polls, err := s.probe(ctx)
	if err != nil {
		s.state = StateUnstarted
		return err
	}
	if found == 0 {
		s.state = StateNoResponse
		s.logError("scanner did not answer at any baud rate", "polls", polls)
		return &NoResponseError{Rates: protocol.BaudRates, Polls: polls}
	}

	s.state = StateSynced
	s.setBaud(found)
	s.logInfo("connection established", "baud", found)

	if found != desired {
		s.state = StateRetuning
		s.logInfo("changing to desired baud rate", "from", found, "to", desired)

		ok, err := s.changeBaudRate(ctx, desired)
		if err != nil {
			return fmt.Errorf("retune to %d baud: %w", desired, err)
		}
		if !ok {
			return fmt.Errorf("retune to %d baud: %w", desired,
				&protocol.ProtocolError{Operation: "change baud rate", Code: protocol.NackInvalidBaudRate})
		}
	}

	s.state = StateReady
	s.started = true
	s.session = uuid.New()
	s.logDebug("session started", "session", s.session.String(), "baud", s.baud)

	return nil
}

// probe scans the baud ladder. It returns the first rate the device
// answered at, or 0, along with the number of polls spent.
func (s *Scanner) probe(ctx context.Context) (int, int, error) {
	open := protocol.BuildOpenCmd()
	polls := 0

	for _, baud := range protocol.BaudRates {
		s.logDebug("probing baud rate", "baud", baud)

		if err := s.port.Open(baud); err != nil {
			return 0, polls, fmt.Errorf("open port at %d baud: %w", baud, err)
		}
		if _, err := s.port.Write(open); err != nil {
			return 0, polls, fmt.Errorf("write open command: %w", err)
		}
		s.countCommand(protocol.CmdOpen)

		synced, n, err := s.awaitStartCodes(ctx)
		polls += n
		if err != nil {
			return 0, polls, err
		}
		if !synced {
			s.discardInput()
			continue
		}

		frame := make([]byte, protocol.FrameSize)
		frame[0] = protocol.CommandStartCode1
		frame[1] = protocol.CommandStartCode2
		if err := s.readFull(ctx, "open", frame[2:]); err != nil {
			return 0, polls, err
		}

		// The probe reply only proves the rate; its content is checked
		// for diagnostics and dropped.
		if resp, err := protocol.ParseResponse(frame); err == nil {
			s.countResponse(protocol.CmdOpen, resp.ACK)
			if !resp.Valid() {
				s.recordDiagnostic(Diagnostic{
					Operation:  "open",
					Kind:       DiagnosticProbe,
					Mismatches: resp.Mismatches,
					Raw:        frame,
				})
			}
		}

		return baud, polls, nil
	}

	return 0, polls, nil
}

// awaitStartCodes polls for the response start codes at the current rate.
// A poll that finds the buffer empty ends the probe for this rate.
func (s *Scanner) awaitStartCodes(ctx context.Context) (bool, int, error) {
	polls := 0
	for polls < s.config.ProbeAttempts {
		polls++
		if err := sleep(ctx, s.config.ProbeInterval); err != nil {
			return false, polls, err
		}
		if s.port.Available() == 0 {
			return false, polls, nil
		}
		b, err := s.port.ReadByte()
		if err != nil {
			return false, polls, fmt.Errorf("read byte: %w", err)
		}
		if b != protocol.CommandStartCode1 {
			continue
		}

		if err := sleep(ctx, s.config.ProbeInterval); err != nil {
			return false, polls, err
		}
		if s.port.Available() == 0 {
			return false, polls, nil
		}
		b, err = s.port.ReadByte()
		if err != nil {
			return false, polls, fmt.Errorf("read byte: %w", err)
		}
		if b == protocol.CommandStartCode2 {
			return true, polls, nil
		}
	}
	return false, polls, nil
}

// discardInput empties the receive buffer.
func (s *Scanner) discardInput() {
	for s.port.Available() > 0 {
		if _, err := s.port.ReadByte(); err != nil {
			return
		}
	}
}
