// Package loader reads firmware hex images into core memory.
//
// The image format is the one produced by the firmware toolchain's
// makehex step: one word per line as "address:data", both fields
// hexadecimal, the address in bytes and the data a 32-bit word value.
// Zero words are omitted from the image, so memory not named by any line
// stays zero.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rvsim/emu"
)

// Word is one address/value pair from a firmware image.
type Word struct {
	// Addr is the byte address of the word.
	Addr uint64
	// Value is the 32-bit word value.
	Value uint32
}

// Image is a parsed firmware image.
type Image struct {
	// Words holds the image contents in file order.
	Words []Word
}

// Load parses a firmware image file.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open firmware image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Parse reads a firmware image from r. Blank lines and lines starting
// with "#" or "//" are ignored.
func Parse(r io.Reader) (*Image, error) {
	img := &Image{}
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		addrText, dataText, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("line %d: expected address:data, got %q", lineNo, line)
		}

		addr, err := strconv.ParseUint(strings.TrimSpace(addrText), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad address %q: %w", lineNo, addrText, err)
		}
		if addr%4 != 0 {
			return nil, fmt.Errorf("line %d: address 0x%x is not word-aligned", lineNo, addr)
		}

		value, err := strconv.ParseUint(strings.TrimSpace(dataText), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad data %q: %w", lineNo, dataText, err)
		}

		img.Words = append(img.Words, Word{Addr: addr, Value: uint32(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read firmware image: %w", err)
	}

	return img, nil
}

// Apply writes the image contents into a memory.
func (img *Image) Apply(mem *emu.Memory) {
	for _, w := range img.Words {
		mem.Write32(w.Addr, w.Value)
	}
}
