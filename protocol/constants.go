package protocol

import "fmt"

// Command channel frame constants.
const (
	// CommandStartCode1 is the first start byte of command and response frames (0x55)
	CommandStartCode1 = 0x55

	// CommandStartCode2 is the second start byte of command and response frames (0xAA)
	CommandStartCode2 = 0xAA

	// DeviceID1 is the low byte of the fixed device ID (0x01)
	DeviceID1 = 0x01

	// DeviceID2 is the high byte of the fixed device ID (0x00)
	DeviceID2 = 0x00

	// FrameSize is the size of every command and response frame in bytes
	FrameSize = 12

	// ChecksumOffset is the position of the checksum low byte in a frame
	ChecksumOffset = 10

	// ParameterSize is the size of the frame parameter field
	ParameterSize = 4
)

// Data channel frame constants. These differ from the command channel
// start codes and must not be mixed up with them.
const (
	// DataStartCode1 is the first start byte of a data packet (0x5A)
	DataStartCode1 = 0x5A

	// DataStartCode2 is the second start byte of a data packet (0xA5)
	DataStartCode2 = 0xA5

	// DataHeaderSize is the size of the data packet header
	DataHeaderSize = 4

	// DataChecksumSize is the size of the trailing data packet checksum
	DataChecksumSize = 2
)

// Response byte 8 values.
const (
	// AckCode marks a positive acknowledgement (0x30)
	AckCode = 0x30

	// NackCode marks a negative acknowledgement (0x31)
	NackCode = 0x31
)

// Opcode identifies a scanner command. Only the low byte is meaningful,
// but it is transmitted as a little-endian 16-bit word.
type Opcode uint16

// Command opcodes per GT-511C3 datasheet.
const (
	// CmdOpen initializes the device
	CmdOpen Opcode = 0x01

	// CmdClose terminates the device session (does nothing on the device)
	CmdClose Opcode = 0x02

	// CmdUsbInternalCheck checks if the connected USB device is valid
	CmdUsbInternalCheck Opcode = 0x03

	// CmdChangeBaudRate changes the UART baud rate
	CmdChangeBaudRate Opcode = 0x04

	// CmdSetIAPMode enters in-application programming mode
	CmdSetIAPMode Opcode = 0x05

	// CmdCmosLed switches the CMOS backlight on or off
	CmdCmosLed Opcode = 0x12

	// CmdGetEnrollCount returns the number of enrolled fingerprints
	CmdGetEnrollCount Opcode = 0x20

	// CmdCheckEnrolled checks whether an ID is enrolled
	CmdCheckEnrolled Opcode = 0x21

	// CmdEnrollStart starts an enrollment for an ID
	CmdEnrollStart Opcode = 0x22

	// CmdEnroll1 makes the first enrollment template
	CmdEnroll1 Opcode = 0x23

	// CmdEnroll2 makes the second enrollment template
	CmdEnroll2 Opcode = 0x24

	// CmdEnroll3 makes the third template and merges all three
	CmdEnroll3 Opcode = 0x25

	// CmdIsPressFinger checks whether a finger is on the sensor
	CmdIsPressFinger Opcode = 0x26

	// CmdDeleteID deletes one enrolled fingerprint
	CmdDeleteID Opcode = 0x40

	// CmdDeleteAll deletes every enrolled fingerprint
	CmdDeleteAll Opcode = 0x41

	// CmdVerify1_1 verifies the captured finger against one ID
	CmdVerify1_1 Opcode = 0x50

	// CmdIdentify1_N identifies the captured finger against the database
	CmdIdentify1_N Opcode = 0x51

	// CmdVerifyTemplate1_1 verifies an uploaded template against one ID
	CmdVerifyTemplate1_1 Opcode = 0x52

	// CmdIdentifyTemplate1_N identifies an uploaded template against the database
	CmdIdentifyTemplate1_N Opcode = 0x53

	// CmdCaptureFinger captures a fingerprint image
	CmdCaptureFinger Opcode = 0x60

	// CmdMakeTemplate makes a template for transmission
	CmdMakeTemplate Opcode = 0x61

	// CmdGetImage downloads the captured fingerprint image (258x202)
	CmdGetImage Opcode = 0x62

	// CmdGetRawImage captures and downloads a raw image (160x120)
	CmdGetRawImage Opcode = 0x63

	// CmdGetTemplate downloads the template of an ID
	CmdGetTemplate Opcode = 0x70

	// CmdSetTemplate uploads a template to an ID
	CmdSetTemplate Opcode = 0x71

	// CmdGetDatabaseStart starts a database download (obsolete)
	CmdGetDatabaseStart Opcode = 0x72

	// CmdGetDatabaseEnd ends a database download (obsolete)
	CmdGetDatabaseEnd Opcode = 0x73

	// CmdUpgradeFirmware is not supported by the device
	CmdUpgradeFirmware Opcode = 0x80

	// CmdUpgradeISOCDImage is not supported by the device
	CmdUpgradeISOCDImage Opcode = 0x81

	// CmdAck is the acknowledge code
	CmdAck Opcode = 0x30

	// CmdNack is the non-acknowledge code
	CmdNack Opcode = 0x31
)

var opcodeNames = map[Opcode]string{
	CmdOpen:                "Open",
	CmdClose:               "Close",
	CmdUsbInternalCheck:    "UsbInternalCheck",
	CmdChangeBaudRate:      "ChangeBaudRate",
	CmdSetIAPMode:          "SetIAPMode",
	CmdCmosLed:             "CmosLed",
	CmdGetEnrollCount:      "GetEnrollCount",
	CmdCheckEnrolled:       "CheckEnrolled",
	CmdEnrollStart:         "EnrollStart",
	CmdEnroll1:             "Enroll1",
	CmdEnroll2:             "Enroll2",
	CmdEnroll3:             "Enroll3",
	CmdIsPressFinger:       "IsPressFinger",
	CmdDeleteID:            "DeleteID",
	CmdDeleteAll:           "DeleteAll",
	CmdVerify1_1:           "Verify1_1",
	CmdIdentify1_N:         "Identify1_N",
	CmdVerifyTemplate1_1:   "VerifyTemplate1_1",
	CmdIdentifyTemplate1_N: "IdentifyTemplate1_N",
	CmdCaptureFinger:       "CaptureFinger",
	CmdMakeTemplate:        "MakeTemplate",
	CmdGetImage:            "GetImage",
	CmdGetRawImage:         "GetRawImage",
	CmdGetTemplate:         "GetTemplate",
	CmdSetTemplate:         "SetTemplate",
	CmdGetDatabaseStart:    "GetDatabaseStart",
	CmdGetDatabaseEnd:      "GetDatabaseEnd",
	CmdUpgradeFirmware:     "UpgradeFirmware",
	CmdUpgradeISOCDImage:   "UpgradeISOCDImage",
	CmdAck:                 "Ack",
	CmdNack:                "Nack",
}

// String returns the command name, or the hex code for unknown opcodes.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", uint16(o))
}

// Bulk transfer payload sizes.
const (
	// TemplateSize is the size of one fingerprint template
	TemplateSize = 498

	// ImageWidth and ImageHeight describe the GetImage bitmap
	ImageWidth  = 258
	ImageHeight = 202

	// ImageSize is the size of a GetImage payload (258x202)
	ImageSize = ImageWidth * ImageHeight

	// RawImageWidth and RawImageHeight describe the GetRawImage bitmap
	RawImageWidth  = 160
	RawImageHeight = 120

	// RawImageSize is the size of a GetRawImage payload (160x120)
	RawImageSize = RawImageWidth * RawImageHeight
)

// Chunk sizes used by the known driver generations.
const (
	// DefaultChunkSize is the bulk receive chunk size of current firmware drivers
	DefaultChunkSize = 64

	// LegacyChunkSize is the chunk size used by the older driver generation
	LegacyChunkSize = 128
)

// BaudRates is the negotiation ladder in ascending order.
var BaudRates = []int{9600, 19200, 38400, 57600, 115200}

// DefaultBaudRate is the power-on baud rate of the device.
const DefaultBaudRate = 9600

// ValidBaudRate reports whether rate is one of the supported baud rates.
func ValidBaudRate(rate int) bool {
	for _, r := range BaudRates {
		if r == rate {
			return true
		}
	}
	return false
}
