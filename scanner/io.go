package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-gt511/protocol"
)

// exchange sends one command frame and reads its response.
func (s *Scanner) exchange(ctx context.Context, operation string, frame []byte) (*protocol.Response, error) {
	op := protocol.Opcode(uint16(frame[8]) | uint16(frame[9])<<8)

	if err := s.sendCommand(op, frame); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	resp, err := s.readResponse(ctx, operation)
	if err != nil {
		return nil, err
	}
	s.countResponse(op, resp.ACK)

	s.logDebug("response received",
		"operation", operation,
		"ack", resp.ACK,
		"parameter", fmt.Sprintf("0x%08X", resp.ParameterValue()),
	)

	return resp, nil
}

// sendCommand writes a command frame.
func (s *Scanner) sendCommand(op protocol.Opcode, frame []byte) error {
	if _, err := s.port.Write(frame); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	s.countCommand(op)
	s.logDebug("command sent", "command", op.String(), "frame", fmt.Sprintf("% X", frame))
	return nil
}

// readResponse hunts for the response start codes, skipping any noise,
// then reads and parses the rest of the frame. Structural mismatches are
// reported as diagnostics and do not fail the read.
func (s *Scanner) readResponse(ctx context.Context, operation string) (*protocol.Response, error) {
	if err := s.hunt(ctx, operation, protocol.CommandStartCode1, protocol.CommandStartCode2); err != nil {
		return nil, err
	}

	frame := make([]byte, protocol.FrameSize)
	frame[0] = protocol.CommandStartCode1
	frame[1] = protocol.CommandStartCode2
	for i := 2; i < protocol.FrameSize; i++ {
		b, err := s.waitByte(ctx, operation)
		if err != nil {
			return nil, err
		}
		frame[i] = b
	}

	resp, err := protocol.ParseResponse(frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if !resp.Valid() {
		s.recordDiagnostic(Diagnostic{
			Operation:  operation,
			Kind:       DiagnosticResponse,
			Mismatches: resp.Mismatches,
			Raw:        frame,
		})
	}

	return resp, nil
}

// hunt consumes bytes until the two start codes arrive back to back.
func (s *Scanner) hunt(ctx context.Context, operation string, first, second byte) error {
	prev := byte(0)
	havePrev := false
	for {
		b, err := s.waitByte(ctx, operation)
		if err != nil {
			return err
		}
		if havePrev && prev == first && b == second {
			return nil
		}
		prev, havePrev = b, true
	}
}

// readFull fills buf from the port.
func (s *Scanner) readFull(ctx context.Context, operation string, buf []byte) error {
	for i := range buf {
		b, err := s.waitByte(ctx, operation)
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}

// waitByte polls the port until a byte is buffered, ReadTimeout passes
// without one or ctx is done. The timeout restarts for every byte, so a
// long transfer only fails when the line goes quiet. Polls of an empty
// buffer are paced by the poll limiter.
func (s *Scanner) waitByte(ctx context.Context, operation string) (byte, error) {
	deadline := time.Now().Add(s.config.ReadTimeout)
	for {
		if s.port.Available() > 0 {
			b, err := s.port.ReadByte()
			if err != nil {
				return 0, fmt.Errorf("%s: read byte: %w", operation, err)
			}
			return b, nil
		}
		if time.Now().After(deadline) {
			return 0, &TimeoutError{Operation: operation, After: s.config.ReadTimeout}
		}
		if err := s.poll.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, fmt.Errorf("%s: %w", operation, ctxErr)
			}
			return 0, fmt.Errorf("%s: %w", operation, err)
		}
	}
}
