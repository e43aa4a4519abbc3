package simulator

import (
	"bytes"
	"encoding/binary"

	"github.com/moffa90/go-gt511/protocol"
)

// notPressed is the IsPressFinger parameter when the sensor is empty.
const notPressed = uint32(protocol.NackFingerIsNotPressed)

func (d *Device) ack(value uint32) {
	d.respond(protocol.BuildResponse(true, value))
}

func (d *Device) nack(code protocol.ErrorCode) {
	d.respond(protocol.BuildNack(code))
}

// handle executes one command against the device state.
func (d *Device) handle(cmd protocol.Command) {
	value := cmd.Value()

	switch cmd.Opcode {
	case protocol.CmdOpen, protocol.CmdClose:
		d.ack(0)

	case protocol.CmdCmosLed:
		d.led = value != 0
		d.ack(0)

	case protocol.CmdChangeBaudRate:
		rate := int(value)
		if !protocol.ValidBaudRate(rate) {
			d.nack(protocol.NackInvalidBaudRate)
			return
		}
		// The acknowledgement still goes out at the old rate
		d.ack(0)
		d.baud = rate

	case protocol.CmdGetEnrollCount:
		d.ack(uint32(len(d.templates)))

	case protocol.CmdCheckEnrolled:
		id := int(value)
		switch {
		case id >= d.capacity:
			d.nack(protocol.NackInvalidPos)
		case d.templates[id] == nil:
			d.nack(protocol.NackIsNotUsed)
		default:
			d.ack(0)
		}

	case protocol.CmdEnrollStart:
		d.enrollStart(int(value))

	case protocol.CmdEnroll1:
		d.enroll(1)
	case protocol.CmdEnroll2:
		d.enroll(2)
	case protocol.CmdEnroll3:
		d.enroll(3)

	case protocol.CmdIsPressFinger:
		if d.finger == none {
			d.ack(notPressed)
		} else {
			d.ack(0)
		}

	case protocol.CmdDeleteID:
		id := int(value)
		if id >= d.capacity || d.templates[id] == nil {
			d.nack(protocol.NackInvalidPos)
			return
		}
		delete(d.templates, id)
		d.ack(0)

	case protocol.CmdDeleteAll:
		if len(d.templates) == 0 {
			d.nack(protocol.NackDBIsEmpty)
			return
		}
		d.templates = make(map[int][]byte)
		d.ack(0)

	case protocol.CmdVerify1_1:
		d.verify(int(value))

	case protocol.CmdIdentify1_N:
		d.identify()

	case protocol.CmdCaptureFinger:
		if d.finger == none {
			d.nack(protocol.NackFingerIsNotPressed)
			return
		}
		d.captured = d.finger
		d.ack(0)

	case protocol.CmdGetImage:
		if d.captured == none {
			d.nack(protocol.NackFingerIsNotPressed)
			return
		}
		d.ack(0)
		d.sendData(Image(d.captured, protocol.ImageWidth, protocol.ImageHeight))

	case protocol.CmdGetRawImage:
		d.ack(0)
		d.sendData(Image(d.finger, protocol.RawImageWidth, protocol.RawImageHeight))

	case protocol.CmdGetTemplate:
		id := int(value)
		switch {
		case id >= d.capacity:
			d.nack(protocol.NackInvalidPos)
		case d.templates[id] == nil:
			d.nack(protocol.NackIsNotUsed)
		default:
			d.ack(0)
			d.sendData(d.templates[id])
		}

	case protocol.CmdSetTemplate:
		id := int(value & 0xFFFF)
		if id >= d.capacity {
			d.nack(protocol.NackInvalidPos)
			return
		}
		d.pendingUpload = id
		d.pendingDup = value>>16 != 0xFFFF
		d.ack(0)

	default:
		d.nack(protocol.NackIsNotSupported)
	}
}

func (d *Device) enrollStart(id int) {
	switch {
	case len(d.templates) >= d.capacity:
		d.nack(protocol.NackDBIsFull)
	case id < 0 || id >= d.capacity:
		d.nack(protocol.NackInvalidPos)
	case d.templates[id] != nil:
		d.nack(protocol.NackIsAlreadyUsed)
	default:
		d.enrollID = id
		d.enrollStep = 1
		d.enrollFinger = none
		d.ack(0)
	}
}

func (d *Device) enroll(step int) {
	if d.enrollID == none || step != d.enrollStep {
		d.nack(protocol.NackTurnErr)
		return
	}
	if d.captured == none {
		d.nack(protocol.NackBadFinger)
		return
	}

	finger := d.captured
	d.captured = none

	if step == 1 {
		tmpl := Template(finger)
		if id, ok := d.match(tmpl, none); ok {
			d.enrollID = none
			d.respond(protocol.BuildResponse(false, uint32(id)))
			return
		}
		d.enrollFinger = finger
	} else if finger != d.enrollFinger {
		d.enrollID = none
		d.nack(protocol.NackEnrollFailed)
		return
	}

	if step == 3 {
		d.templates[d.enrollID] = Template(finger)
		d.enrollID = none
		d.enrollStep = 0
		d.ack(0)
		return
	}

	d.enrollStep++
	d.ack(0)
}

func (d *Device) verify(id int) {
	switch {
	case id >= d.capacity:
		d.nack(protocol.NackInvalidPos)
	case d.templates[id] == nil:
		d.nack(protocol.NackIsNotUsed)
	case d.captured == none:
		d.nack(protocol.NackFingerIsNotPressed)
	case bytes.Equal(d.templates[id], Template(d.captured)):
		d.ack(0)
	default:
		d.nack(protocol.NackVerifyFailed)
	}
}

func (d *Device) identify() {
	if len(d.templates) == 0 {
		d.nack(protocol.NackDBIsEmpty)
		return
	}
	if d.captured == none {
		d.nack(protocol.NackFingerIsNotPressed)
		return
	}
	if id, ok := d.match(Template(d.captured), none); ok {
		d.ack(uint32(id))
		return
	}
	d.nack(protocol.NackIdentifyFailed)
}

// handleUpload completes a SetTemplate with the received data packet.
func (d *Device) handleUpload(packet []byte) {
	id, dupCheck := d.pendingUpload, d.pendingDup
	d.pendingUpload = none

	if len(d.uploadReplies) > 0 {
		reply := d.uploadReplies[0]
		d.uploadReplies = d.uploadReplies[1:]
		d.respond(reply)
		return
	}

	if len(protocol.CheckDataHeader(packet[:protocol.DataHeaderSize])) > 0 {
		d.nack(protocol.NackCommErr)
		return
	}

	payload := packet[protocol.DataHeaderSize : len(packet)-protocol.DataChecksumSize]
	received := binary.LittleEndian.Uint16(packet[len(packet)-protocol.DataChecksumSize:])
	if received != protocol.DataChecksum(payload, d.scope) {
		d.nack(protocol.NackCommErr)
		return
	}

	if dupCheck {
		if existing, ok := d.match(payload, id); ok {
			d.respond(protocol.BuildResponse(false, uint32(existing)))
			return
		}
	}

	d.templates[id] = append([]byte(nil), payload...)
	d.ack(0)
}

// match finds a stored template equal to tmpl, ignoring slot skip.
func (d *Device) match(tmpl []byte, skip int) (int, bool) {
	for id := 0; id < d.capacity; id++ {
		if id == skip {
			continue
		}
		if t := d.templates[id]; t != nil && bytes.Equal(t, tmpl) {
			return id, true
		}
	}
	return 0, false
}
