// Package protocol implements the GT-511C3 fingerprint scanner packet protocol.
//
// This package builds command frames, parses response frames and frames the
// bulk data packets used for images and templates. It performs no I/O.
//
// # Protocol Overview
//
// The command channel uses fixed 12-byte frames:
//
//	Command:  [0x55][0xAA][0x01][0x00][P0..P3][OP_L][OP_H][CHECKSUM_L][CHECKSUM_H]
//	Response: [0x55][0xAA][0x01][0x00][P0..P3][ACK][0x00][CHECKSUM_L][CHECKSUM_H]
//
// Where:
//   - P0..P3 = 32-bit parameter (little-endian)
//   - ACK = 0x30 for acknowledge, 0x31 for non-acknowledge
//   - CHECKSUM = 16-bit additive sum of the preceding 10 bytes (little-endian)
//
// The data channel carries bulk payloads with its own start codes:
//
//	Data: [0x5A][0xA5][0x01][0x00][PAYLOAD...][CHECKSUM_L][CHECKSUM_H]
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildSetLEDCmd(true)
//	frame, err := protocol.BuildChangeBaudRateCmd(115200)
//
// # Response Parsing
//
// ParseResponse never rejects a 12-byte frame. Structural problems are
// listed in Response.Mismatches so the caller can report them:
//
//	resp, err := protocol.ParseResponse(frame)
//	if !resp.ACK {
//	    return &protocol.ProtocolError{Operation: "delete id", Code: resp.Error}
//	}
//
// # Bulk Transfers
//
// PlanChunks splits a download into chunks sized for the host receive
// buffer, and BuildDataPacket frames an upload:
//
//	plan, err := protocol.PlanChunks(protocol.TransferLength(protocol.TemplateSize), 64)
//	packet := protocol.BuildDataPacket(template, protocol.ChecksumPayload)
package protocol
