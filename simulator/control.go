package simulator

import (
	"github.com/moffa90/go-gt511/protocol"
)

// PressFinger places a finger on the sensor. Fingers with the same
// identity produce the same template.
func (d *Device) PressFinger(identity int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identity < 0 {
		identity = 0
	}
	d.finger = identity
}

// LiftFinger removes the finger from the sensor.
func (d *Device) LiftFinger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finger = none
}

// Store puts a template directly into slot id.
func (d *Device) Store(id int, tmpl []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.templates[id] = append([]byte(nil), tmpl...)
}

// Stored returns a copy of the template in slot id, or nil.
func (d *Device) Stored(id int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.templates[id]; t != nil {
		return append([]byte(nil), t...)
	}
	return nil
}

// EnrollCount returns the number of stored templates.
func (d *Device) EnrollCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.templates)
}

// BaudRate returns the rate the device currently listens at.
func (d *Device) BaudRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.baud
}

// HostBaudRate returns the rate the host side of the link is set to.
func (d *Device) HostBaudRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hostBaud
}

// LED reports whether the backlight is on.
func (d *Device) LED() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.led
}

// Commands returns the opcodes of every command the device understood.
func (d *Device) Commands() []protocol.Opcode {
	d.mu.Lock()
	defer d.mu.Unlock()

	ops := make([]protocol.Opcode, len(d.commands))
	for i, c := range d.commands {
		ops[i] = c.Opcode
	}
	return ops
}

// LastCommand returns the most recent command the device understood.
func (d *Device) LastCommand() (protocol.Command, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.commands) == 0 {
		return protocol.Command{}, false
	}
	return d.commands[len(d.commands)-1], true
}

// SetSilent makes the device ignore everything the host sends.
func (d *Device) SetSilent(silent bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.silent = silent
}

// QueueResponse makes the device answer the next op command with frame
// instead of executing it.
func (d *Device) QueueResponse(op protocol.Opcode, frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injected[op] = append(d.injected[op], append([]byte(nil), frame...))
}

// QueueNack makes the device refuse the next op command with code.
func (d *Device) QueueNack(op protocol.Opcode, code protocol.ErrorCode) {
	d.QueueResponse(op, protocol.BuildNack(code))
}

// QueueUploadResponse makes the device answer the next SetTemplate data
// packet with frame.
func (d *Device) QueueUploadResponse(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploadReplies = append(d.uploadReplies, append([]byte(nil), frame...))
}

// InjectNoise sends junk bytes ahead of the next response.
func (d *Device) InjectNoise(junk []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.noise = append(d.noise, junk...)
}

// CorruptNextResponse damages the checksum of the next response.
func (d *Device) CorruptNextResponse() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.corruptNext = true
}

// InjectOverflow raises the overflow flag once the host has read after
// bytes of the next data packet.
func (d *Device) InjectOverflow(after int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overflowAfter = after
}
