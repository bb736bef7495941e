// Package loader reads boot images into memory segments. Two formats are
// supported: the plain word-per-line hex commonly emitted by firmware build
// scripts (eight-digit or shorter hex words, optional @ADDRESS directives
// giving the next word address, comments introduced by // or #), and raw
// little-endian binary, selected by a .bin extension.
package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Segment is a contiguous run of words at a byte base address.
type Segment struct {
	Base  uint32
	Words []uint32
}

// LoadFile parses the image at path, choosing the format by extension:
// .bin is raw little-endian binary, anything else is the hex word list.
func LoadFile(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	var segs []Segment
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		segs, err = ParseBinary(f)
	} else {
		segs, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing image %s: %w", path, err)
	}
	return segs, nil
}

// ParseBinary reads a raw image as little-endian words at address zero. A
// trailing partial word is zero-padded.
func ParseBinary(r io.Reader) ([]Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return []Segment{{Words: words}}, nil
}

// Parse reads a hex image. An @ directive gives the following word's
// word-granular address; images without directives start at address zero.
func Parse(r io.Reader) ([]Segment, error) {
	var segs []Segment
	var current *Segment
	nextAddr := uint32(0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}

		for _, tok := range strings.Fields(line) {
			if strings.HasPrefix(tok, "@") {
				addr, err := strconv.ParseUint(tok[1:], 16, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad address %q", lineNo, tok)
				}
				nextAddr = uint32(addr) * 4
				current = nil
				continue
			}

			word, err := strconv.ParseUint(tok, 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad word %q", lineNo, tok)
			}
			if current == nil {
				segs = append(segs, Segment{Base: nextAddr})
				current = &segs[len(segs)-1]
			}
			current.Words = append(current.Words, uint32(word))
			nextAddr += 4
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}
