package credential

import (
	"fmt"

	"tusk/wiegand"
)

// Bit lengths accepted as HID proximity frames by the filter.
const (
	MinHIDBits = 26
	MaxHIDBits = 37
)

// hidFormat gives the [start,end) offsets of the facility code and card
// number within a frame of a given length.
type hidFormat struct {
	name          string
	facilityStart int
	facilityEnd   int
	cardStart     int
	cardEnd       int
}

// hidFormats is the canonical per-length field table. 28 bits has no
// registered layout and decodes as unknown.
var hidFormats = map[int]hidFormat{
	26: {"H10301", 1, 9, 9, 25},
	27: {"HID27", 1, 14, 14, 26},
	29: {"HID29", 1, 13, 13, 28},
	30: {"HID30", 1, 13, 13, 29},
	31: {"ADT31", 1, 5, 5, 28},
	32: {"HID32", 1, 13, 13, 31},
	33: {"D10202", 1, 8, 8, 32},
	34: {"H10306", 1, 17, 17, 33},
	35: {"C1000", 2, 14, 14, 34},
	36: {"HID36", 1, 19, 19, 35},
	37: {"H10304", 1, 17, 17, 36},
}

func decodeHID(f wiegand.Frame) (Credential, bool) {
	format, ok := hidFormats[f.Count]
	if !ok {
		return Credential{}, false
	}

	return Credential{
		Kind:         KindHID,
		Format:       format.name,
		BitLength:    f.Count,
		FacilityCode: uint32(f.Uint(format.facilityStart, format.facilityEnd)),
		CardNumber:   uint32(f.Uint(format.cardStart, format.cardEnd)),
		Hex:          hidHex(f),
		Raw:          f.String(),
	}, true
}

// hidHex rebuilds the 44-bit value a HID prox card carries on air:
// a 20-bit chunk holding the preamble and the first n-24 frame bits,
// followed by the last 24 frame bits.
//
//	|>   preamble   <| |>   card value   <|
//	000000100000000001 11 111000100000100100111000
//	|>     chunk1     <| |>     chunk2     <|
func hidHex(f wiegand.Frame) string {
	n := f.Count
	if n < MinHIDBits || n > MaxHIDBits {
		return ""
	}

	holder1 := f.Uint(0, min(n, 22))
	holder2 := f.Uint(22, n)

	marker := n - 24
	holderOffset := 46 - n
	split := n - 22

	var chunk1, chunk2 uint64
	for i := 19; i >= 0; i-- {
		switch {
		case n == MaxHIDBits:
			// 37-bit cards carry no length marker.
			if i != 13 {
				chunk1 |= bitAt(holder1, i+holderOffset) << i
			}
		case i == 13 || i == marker:
			chunk1 |= 1 << i
		case i > marker:
		default:
			chunk1 |= bitAt(holder1, i+holderOffset) << i
		}

		if i < holderOffset {
			chunk2 |= bitAt(holder1, i) << (i + split)
		}
		if i < split {
			chunk2 |= bitAt(holder2, i) << i
		}
	}

	return fmt.Sprintf("%x%06x", chunk1, chunk2)
}

func bitAt(v uint64, i int) uint64 {
	if i < 0 || i > 63 {
		return 0
	}
	return (v >> i) & 1
}

// EncodeH10301 builds the 26-bit frame for facility fc and card cn:
// even parity over bits 1..12, odd parity over bits 13..24.
func EncodeH10301(fc uint8, cn uint16) wiegand.Frame {
	var f wiegand.Frame
	f.Count = 26

	v := uint32(fc)<<16 | uint32(cn)
	for i := 0; i < 24; i++ {
		f.Bits[24-i] = uint8(v>>i) & 1
	}

	var even, odd uint8
	for i := 1; i <= 12; i++ {
		even ^= f.Bits[i]
	}
	for i := 13; i <= 24; i++ {
		odd ^= f.Bits[i]
	}
	f.Bits[0] = even
	f.Bits[25] = odd ^ 1
	return f
}
