package credential

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tusk/wiegand"
)

func scramble(b []byte) {
	for i := range b {
		b[i] = scrambleTable[b[i]]
	}
}

// encodeGallagher builds the 96-bit frame a Cardax card with the given
// fields would emit.
func encodeGallagher(region, issue uint8, facility, card uint32) string {
	b := []byte{
		byte(card >> 16),
		byte(facility >> 4),
		byte(card >> 3),
		byte(card&0x07)<<5 | (region&0x0f)<<1,
		byte(card>>11) & 0x1f,
		byte(facility>>12) & 0x0f,
		0,
		byte(facility&0x0f)<<4 | issue&0x0f,
	}
	scramble(b)

	var sb strings.Builder
	sb.WriteString("0111111111101010")
	for _, v := range b {
		fmt.Fprintf(&sb, "%08b%d", v, 1-v&1)
	}
	fmt.Fprintf(&sb, "%08b", gallagherChecksum(b))
	return sb.String()
}

func flipBit(bits string, i int) string {
	r := []byte(bits)
	if r[i] == '0' {
		r[i] = '1'
	} else {
		r[i] = '0'
	}
	return string(r)
}

func TestDecodeGallagher_Fields(t *testing.T) {
	tests := []struct {
		region, issue  uint8
		facility, card uint32
	}{
		{1, 1, 1234, 56789},
		{0, 0, 0, 1},
		{15, 15, 0xffff, 0xffffff},
		{7, 3, 0x8001, 0x800001},
	}

	for _, tt := range tests {
		bits := encodeGallagher(tt.region, tt.issue, tt.facility, tt.card)
		require.Len(t, bits, GallagherBits)

		c, err := Decode(mustFrame(t, bits))
		require.NoError(t, err)
		require.Equal(t, KindGallagher, c.Kind)
		require.Equal(t, "Cardax", c.Format)
		require.Equal(t, GallagherBits, c.BitLength)
		require.Equal(t, tt.facility, c.FacilityCode)
		require.Equal(t, tt.card, c.CardNumber)
		require.NotNil(t, c.Gallagher)
		require.Equal(t, tt.region, c.Gallagher.RegionCode)
		require.Equal(t, tt.issue, c.Gallagher.IssueLevel)
		require.Equal(t, bits, c.Raw)
		require.Len(t, c.Hex, 24)
	}
}

func TestDecodeGallagher_Deterministic(t *testing.T) {
	f := mustFrame(t, encodeGallagher(2, 4, 4321, 98765))
	a, errA := Decode(f)
	b, errB := Decode(f)
	require.NoError(t, errA)
	require.NoError(t, errB)
	require.Equal(t, a, b)
}

func TestDecodeGallagher_NoPreamble(t *testing.T) {
	f := mustFrame(t, strings.Repeat("0", GallagherBits))

	c, err := Decode(f)
	require.ErrorIs(t, err, ErrNoPreamble)
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, KindUnknown, c.Kind)
	require.Equal(t, GallagherBits, c.BitLength)
}

func TestDecodeGallagher_ShortPayload(t *testing.T) {
	bits := strings.Repeat("0", 10) + "0111111111101010" + strings.Repeat("0", 70)

	_, err := Decode(mustFrame(t, bits))
	require.ErrorIs(t, err, ErrShortPayload)
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestDecodeGallagher_Parity(t *testing.T) {
	bits := encodeGallagher(1, 1, 1234, 56789)
	// Parity bit of the fourth byte.
	bits = flipBit(bits, gallagherPreambleBits+3*gallagherGroupBits+8)

	c, err := Decode(mustFrame(t, bits))
	require.ErrorIs(t, err, ErrParity)
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, KindUnknown, c.Kind)
}

func TestDecodeGallagher_Checksum(t *testing.T) {
	bits := encodeGallagher(1, 1, 1234, 56789)
	bad := flipBit(bits, GallagherBits-1)

	// Not enforced by default.
	c, err := Decode(mustFrame(t, bad))
	require.NoError(t, err)
	require.Equal(t, uint32(56789), c.CardNumber)

	strict := New(Config{VerifyGallagherChecksum: true})

	c, err = strict.Decode(mustFrame(t, bits))
	require.NoError(t, err)
	require.Equal(t, KindGallagher, c.Kind)

	c, err = strict.Decode(mustFrame(t, bad))
	require.ErrorIs(t, err, ErrChecksum)
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, KindUnknown, c.Kind)
}

func TestScrambleRoundTrip(t *testing.T) {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	scramble(b)
	descramble(b)
	for i := range b {
		require.Equal(t, byte(i), b[i])
	}
}

func TestFrameHex(t *testing.T) {
	f := mustFrame(t, "1000000111111111")
	require.Equal(t, "81ff", frameHex(f))

	var empty wiegand.Frame
	require.Equal(t, "", frameHex(empty))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "hid", KindHID.String())
	require.Equal(t, "gallagher", KindGallagher.String())
	require.Equal(t, "unknown", KindUnknown.String())
	require.Equal(t, "unknown", Kind(42).String())
}
