package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tusk/credential"
	"tusk/wiegand"
)

const card26 = "0" + "10000001" + "0000000000000001" + "0"

func decode(t *testing.T, bits string) (credential.Credential, wiegand.Frame) {
	t.Helper()
	f, err := wiegand.ParseFrame(bits)
	require.NoError(t, err)
	c, err := credential.Decode(f)
	require.NoError(t, err)
	return c, f
}

func TestCheck_Duplicate(t *testing.T) {
	fl := New()
	c, f := decode(t, card26)

	require.Equal(t, Accept, fl.Check(c, f))
	// Nothing committed yet, so the same frame is still accepted.
	require.Equal(t, Accept, fl.Check(c, f))

	fl.Commit(f)
	require.Equal(t, Duplicate, fl.Check(c, f))

	last, ok := fl.Last()
	require.True(t, ok)
	require.True(t, last.Equal(f))
}

func TestCheck_SingleBitDifference(t *testing.T) {
	fl := New()
	c, f := decode(t, card26)
	fl.Commit(f)

	other := card26[:len(card26)-1] + "1"
	c2, f2 := decode(t, other)
	require.Equal(t, Accept, fl.Check(c2, f2))
	require.Equal(t, Duplicate, fl.Check(c, f))
}

func TestCheck_DuplicateNeedsSameLength(t *testing.T) {
	fl := New()
	_, f := decode(t, card26)
	fl.Commit(f)

	// Same leading bits, one extra bit.
	c2, f2 := decode(t, card26+"0")
	require.Equal(t, Accept, fl.Check(c2, f2))
}

func TestCheck_Invalid(t *testing.T) {
	fl := New()

	c, f := decode(t, strings.Repeat("1", 40))
	require.Equal(t, Invalid, fl.Check(c, f))

	// Decodes as H10301 but both fields are zero.
	c, f = decode(t, strings.Repeat("0", 26))
	require.Equal(t, credential.KindHID, c.Kind)
	require.Equal(t, Invalid, fl.Check(c, f))

	c, f = decode(t, strings.Repeat("1", 28))
	require.Equal(t, credential.KindUnknown, c.Kind)
	require.Equal(t, Invalid, fl.Check(c, f))
}

func TestReset(t *testing.T) {
	fl := New()
	c, f := decode(t, card26)
	fl.Commit(f)
	require.Equal(t, Duplicate, fl.Check(c, f))

	fl.Reset()
	_, ok := fl.Last()
	require.False(t, ok)
	require.Equal(t, Accept, fl.Check(c, f))
}

func TestValid(t *testing.T) {
	require.False(t, Valid(credential.Credential{}))
	require.False(t, Valid(credential.Credential{Kind: credential.KindHID, BitLength: 38, CardNumber: 1}))
	require.True(t, Valid(credential.Credential{Kind: credential.KindHID, BitLength: 26, FacilityCode: 1}))
	require.True(t, Valid(credential.Credential{Kind: credential.KindGallagher, BitLength: 96, CardNumber: 5}))
}

func TestVerdictString(t *testing.T) {
	require.Equal(t, "accept", Accept.String())
	require.Equal(t, "duplicate", Duplicate.String())
	require.Equal(t, "invalid", Invalid.String())
}
