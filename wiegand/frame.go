package wiegand

import (
	"fmt"
	"strings"
)

// MaxBits is the capacity of the capture buffer. Edges past it are dropped.
const MaxBits = 100

// Frame is one silence-delimited bit sequence captured from the reader.
// It is a plain value: copying a Frame copies its bits.
type Frame struct {
	Bits  [MaxBits]uint8
	Count int
}

// ParseFrame builds a Frame from a string of '0' and '1' characters.
// Whitespace is ignored. Bits past MaxBits are dropped like on the wire.
func ParseFrame(s string) (Frame, error) {
	var f Frame
	for _, c := range s {
		switch c {
		case '0', '1':
			if f.Count < MaxBits {
				f.Bits[f.Count] = uint8(c - '0')
				f.Count++
			}
		case ' ', '\t', '\r', '\n':
		default:
			return Frame{}, fmt.Errorf("invalid bit %q", c)
		}
	}
	return f, nil
}

// Len returns the number of captured bits.
func (f Frame) Len() int {
	return f.Count
}

// Bit returns bit i, or 0 when i is out of range.
func (f Frame) Bit(i int) uint8 {
	if i < 0 || i >= f.Count {
		return 0
	}
	return f.Bits[i]
}

// Uint accumulates bits [start,end) MSB first.
func (f Frame) Uint(start, end int) uint64 {
	var v uint64
	for i := start; i < end; i++ {
		v = (v << 1) | uint64(f.Bit(i))
	}
	return v
}

// Equal reports whether both frames have the same length and bits.
func (f Frame) Equal(o Frame) bool {
	if f.Count != o.Count {
		return false
	}
	for i := 0; i < f.Count; i++ {
		if f.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}

// String renders the frame as '0'/'1' characters.
func (f Frame) String() string {
	var b strings.Builder
	b.Grow(f.Count)
	for i := 0; i < f.Count; i++ {
		b.WriteByte('0' + f.Bits[i])
	}
	return b.String()
}
