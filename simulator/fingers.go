package simulator

import "github.com/moffa90/go-gt511/protocol"

// Template returns the deterministic template of a finger identity.
func Template(identity int) []byte {
	tmpl := make([]byte, protocol.TemplateSize)
	state := uint32(identity)*2654435761 + 0x9E3779B9
	for i := range tmpl {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		tmpl[i] = byte(state)
	}
	return tmpl
}

// Image returns a deterministic 8-bit grayscale image of a finger
// identity. A negative identity gives an empty sensor.
func Image(identity, width, height int) []byte {
	img := make([]byte, width*height)
	if identity < 0 {
		for i := range img {
			img[i] = 0xF0
		}
		return img
	}

	cx, cy := width/2, height/2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			// Concentric ridges, shifted per identity
			ridge := (dx*dx + dy*dy + identity*97) / (7 + identity%5)
			img[y*width+x] = byte(ridge%2*160 + 40)
		}
	}
	return img
}
