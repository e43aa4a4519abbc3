package scanner

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-gt511/protocol"
)

// receiveData reads a data packet of payloadSize bytes after a
// successful handshake and streams the payload to w chunk by chunk.
//
// The part of the packet after the header (payload plus checksum) is read
// in ChunkSize pieces so that the host receive buffer never has to hold
// more than one chunk. If the port reports an overflow, the transfer is
// abandoned, the rest of the packet is drained and an *OverflowError is
// returned.
func (s *Scanner) receiveData(ctx context.Context, operation string, payloadSize int, w io.Writer) error {
	total := protocol.TransferLength(payloadSize)
	plan, err := protocol.PlanChunks(total, s.config.ChunkSize)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	startTime := time.Now()

	if err := s.hunt(ctx, operation, protocol.DataStartCode1, protocol.DataStartCode2); err != nil {
		return err
	}

	header := make([]byte, protocol.DataHeaderSize)
	header[0] = protocol.DataStartCode1
	header[1] = protocol.DataStartCode2
	for i := 2; i < protocol.DataHeaderSize; i++ {
		b, err := s.waitByte(ctx, operation)
		if err != nil {
			return err
		}
		header[i] = b
	}
	if mismatches := protocol.CheckDataHeader(header); len(mismatches) > 0 {
		s.recordDiagnostic(Diagnostic{
			Operation:  operation,
			Kind:       DiagnosticDataHeader,
			Mismatches: mismatches,
			Raw:        header,
		})
	}

	s.logDebug("receiving data",
		"operation", operation,
		"bytes", payloadSize,
		"chunks", plan.Chunks,
		"final_chunk", plan.FinalChunk,
	)

	sum := protocol.DataChecksumSeed(s.config.ChecksumScope)
	trailer := make([]byte, 0, protocol.DataChecksumSize)
	chunk := make([]byte, plan.ChunkSize)
	received := protocol.DataHeaderSize
	written := 0

	for i := 0; i < plan.Chunks; i++ {
		n := plan.ChunkLen(i)
		for j := 0; j < n; j++ {
			b, err := s.waitByte(ctx, operation)
			if err != nil {
				return err
			}
			chunk[j] = b
			received++
			if s.port.Overflow() {
				return s.abortOverflow(ctx, operation, received, total)
			}
		}

		data := chunk[:n]
		if remaining := payloadSize - written; remaining < n {
			if remaining < 0 {
				remaining = 0
			}
			trailer = append(trailer, data[remaining:]...)
			data = data[:remaining]
		}

		if len(data) > 0 {
			sum = protocol.ChecksumFrom(sum, data)
			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("%s: write payload: %w", operation, err)
			}
			written += len(data)
		}

		s.reportProgress(Progress{
			Operation:   operation,
			Chunk:       i + 1,
			TotalChunks: plan.Chunks,
			Bytes:       written,
			TotalBytes:  payloadSize,
			Percentage:  float64(i+1) / float64(plan.Chunks) * 100,
			ElapsedTime: time.Since(startTime),
		})
	}

	s.countBytes("rx", written)

	actual := binary.LittleEndian.Uint16(trailer)
	if actual != sum {
		s.recordDiagnostic(Diagnostic{
			Operation: operation,
			Kind:      DiagnosticDataChecksum,
			Mismatches: []protocol.FieldMismatch{
				{Field: "data checksum low", Offset: total - 2, Expected: protocol.LowByte(sum), Alternate: protocol.LowByte(sum), Actual: trailer[0]},
				{Field: "data checksum high", Offset: total - 1, Expected: protocol.HighByte(sum), Alternate: protocol.HighByte(sum), Actual: trailer[1]},
			},
			Raw: trailer,
		})
		if s.config.StrictDataChecksum {
			return &DataChecksumError{Operation: operation, Expected: sum, Actual: actual}
		}
	}

	s.logInfo("data received",
		"operation", operation,
		"bytes", written,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// abortOverflow drains what is left of the packet so the next command
// starts on a clean channel, then reports the overflow.
func (s *Scanner) abortOverflow(ctx context.Context, operation string, received, total int) error {
	s.countOverflow()
	s.logError("receive buffer overflow, data download stopped",
		"operation", operation,
		"received", received,
		"expected", total,
	)

	for i := received; i < total; i++ {
		if err := sleep(ctx, s.config.DrainDelay); err != nil {
			return fmt.Errorf("%s: drain after overflow: %w", operation, err)
		}
		if s.port.Available() > 0 {
			if _, err := s.port.ReadByte(); err != nil {
				break
			}
		}
	}
	// Clear the flag raised by the bytes dropped while draining
	s.port.Overflow()

	return &OverflowError{Operation: operation, Received: received, Expected: total}
}

// sendData writes payload as one data packet and reads the confirming
// response.
func (s *Scanner) sendData(ctx context.Context, operation string, payload []byte) (*protocol.Response, error) {
	packet := protocol.BuildDataPacket(payload, s.config.ChecksumScope)
	startTime := time.Now()

	if _, err := s.port.Write(packet); err != nil {
		return nil, fmt.Errorf("%s: write data packet: %w", operation, err)
	}
	s.countBytes("tx", len(payload))

	s.reportProgress(Progress{
		Operation:   operation,
		Chunk:       1,
		TotalChunks: 1,
		Bytes:       len(payload),
		TotalBytes:  len(payload),
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})

	s.logDebug("data sent",
		"operation", operation,
		"bytes", len(payload),
		"checksum_scope", s.config.ChecksumScope.String(),
	)

	resp, err := s.readResponse(ctx, operation)
	if err != nil {
		return nil, err
	}
	s.countResponse(protocol.CmdSetTemplate, resp.ACK)
	return resp, nil
}
