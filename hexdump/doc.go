// Package hexdump reads and writes the hex dump text format used for
// inspecting scanner traffic and for storing templates as text.
//
// A dump is a sequence of lines of space-separated hex byte pairs:
//
//	# template 3
//	0000: 03 1F 8A 00 ...
//	0010: 55 AA 01 00 ...
//
// Offsets and '#' comment lines are optional. Write produces this form,
// Format produces the bare "55 AA 01 00" form, and both parse back with
// ParseReader.
package hexdump
