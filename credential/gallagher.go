package credential

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"tusk/wiegand"
)

// GallagherBits is the frame length of a Gallagher Cardax 125 kHz read.
const GallagherBits = 96

// gallagherPreamble is searched for in the raw bits. The full preamble is
// 16 bits; the payload starts 16 bits after the match.
const gallagherPreamble = "01111111111010"

const (
	gallagherPreambleBits = 16
	gallagherGroupBits    = 9
	gallagherPayloadBits  = 8*gallagherGroupBits + 8
)

var (
	// ErrMalformed is wrapped by every Gallagher decode failure.
	ErrMalformed    = errors.New("malformed gallagher frame")
	ErrNoPreamble   = fmt.Errorf("%w: preamble not found", ErrMalformed)
	ErrShortPayload = fmt.Errorf("%w: payload too short", ErrMalformed)
	ErrParity       = fmt.Errorf("%w: parity mismatch", ErrMalformed)
	ErrChecksum     = fmt.Errorf("%w: checksum mismatch", ErrMalformed)
)

func decodeGallagher(f wiegand.Frame, verifyChecksum bool) (Credential, error) {
	raw := f.String()

	idx := strings.Index(raw, gallagherPreamble)
	if idx < 0 {
		return unknown(f), ErrNoPreamble
	}

	start := idx + gallagherPreambleBits
	if start+gallagherPayloadBits > f.Count {
		return unknown(f), fmt.Errorf("%w: %d bits after preamble at %d", ErrShortPayload, f.Count-start, idx)
	}

	// Each byte is followed by a bit that must differ from its last data bit.
	var scrambled [8]byte
	for i := range scrambled {
		pos := start + i*gallagherGroupBits
		if f.Bit(pos+7) == f.Bit(pos+8) {
			return unknown(f), fmt.Errorf("%w: byte %d", ErrParity, i)
		}
		scrambled[i] = byte(f.Uint(pos, pos+8))
	}
	sum := byte(f.Uint(start+8*gallagherGroupBits, start+gallagherPayloadBits))

	if verifyChecksum {
		if want := gallagherChecksum(scrambled[:]); want != sum {
			return unknown(f), fmt.Errorf("%w: got %02x want %02x", ErrChecksum, sum, want)
		}
	}

	b := scrambled
	descramble(b[:])

	return Credential{
		Kind:         KindGallagher,
		Format:       "Cardax",
		BitLength:    f.Count,
		FacilityCode: uint32(b[5]&0x0f)<<12 | uint32(b[1])<<4 | uint32(b[7]>>4)&0x0f,
		CardNumber:   uint32(b[0])<<16 | uint32(b[4]&0x1f)<<11 | uint32(b[2])<<3 | uint32(b[3]&0xe0)>>5,
		Hex:          frameHex(f),
		Raw:          raw,
		Gallagher: &GallagherFields{
			RegionCode: (b[3] & 0x1e) >> 1,
			IssueLevel: b[7] & 0x0f,
			Checksum:   sum,
		},
	}, nil
}

// frameHex packs the frame MSB first into bytes. A trailing partial byte
// is left-aligned.
func frameHex(f wiegand.Frame) string {
	out := make([]byte, (f.Count+7)/8)
	for i := 0; i < f.Count; i++ {
		out[i/8] |= f.Bits[i] << (7 - uint(i%8))
	}
	return hex.EncodeToString(out)
}
