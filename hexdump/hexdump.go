package hexdump

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// BytesPerLine is the number of bytes Write puts on each line
	BytesPerLine = 16

	// CommentPrefix starts a line that parsers skip
	CommentPrefix = "#"
)

// Parse reads a hex dump from the given file path.
//
// Example:
//
//	tmpl, err := hexdump.Parse("id3.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads a hex dump from any io.Reader.
//
// Each line holds hex byte pairs, optionally separated by spaces and
// optionally preceded by an offset such as "01F0:". Empty lines and
// lines starting with '#' are skipped.
//
// Example:
//
//	data, err := hexdump.ParseReader(strings.NewReader("55 AA 01 00\n"))
func ParseReader(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)

	var out []byte
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		data, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		out = append(out, data...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no data found in dump")
	}

	return out, nil
}

// parseLine decodes one dump line.
//
// Accepted forms:
//
//	55 AA 01 00 00 00 00 00 01 00 01 01
//	0010: 55 AA 01 00
//	55AA0100
func parseLine(line string) ([]byte, error) {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		offset := line[:i]
		if _, err := hex.DecodeString(padOffset(offset)); err != nil {
			return nil, fmt.Errorf("invalid offset %q", offset)
		}
		line = line[i+1:]
	}

	digits := strings.Join(strings.Fields(line), "")
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits: %d", len(digits))
	}

	data, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return data, nil
}

func padOffset(s string) string {
	if len(s)%2 != 0 {
		return "0" + s
	}
	return s
}

// Format returns data as dump lines without offsets, BytesPerLine bytes
// per line, in the "55 AA 01 00" form.
func Format(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += BytesPerLine {
		end := min(i+BytesPerLine, len(data))
		for j, v := range data[i:end] {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02X", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Write writes data to w as an offset-prefixed dump. A non-empty comment
// is written first as '#' lines.
//
// Example:
//
//	hexdump.Write(os.Stdout, tmpl, "template 3")
//	// # template 3
//	// 0000: 03 1F ...
func Write(w io.Writer, data []byte, comment string) error {
	bw := bufio.NewWriter(w)

	if comment != "" {
		for _, line := range strings.Split(comment, "\n") {
			if _, err := fmt.Fprintf(bw, "%s %s\n", CommentPrefix, line); err != nil {
				return err
			}
		}
	}

	for i := 0; i < len(data); i += BytesPerLine {
		end := min(i+BytesPerLine, len(data))
		if _, err := fmt.Fprintf(bw, "%04X: % X\n", i, data[i:end]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load reads a file that is either a hex dump or raw binary. Content that
// does not parse as a dump is returned as is.
func Load(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if data, err := ParseReader(bytes.NewReader(raw)); err == nil {
		return data, nil
	}
	return raw, nil
}
