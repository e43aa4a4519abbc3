package protocol

// Checksum computes the 16-bit additive checksum of data.
// The sum wraps around at 65536.
func Checksum(data []byte) uint16 {
	return ChecksumFrom(0, data)
}

// ChecksumFrom continues an additive checksum from seed. It lets bulk
// transfers accumulate the checksum chunk by chunk.
func ChecksumFrom(seed uint16, data []byte) uint16 {
	sum := seed
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// HighByte returns the high byte of w.
func HighByte(w uint16) byte {
	return byte(w >> 8)
}

// LowByte returns the low byte of w.
func LowByte(w uint16) byte {
	return byte(w)
}
