package indicator

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"tusk/display"
)

type pipeBuffer struct {
	bytes.Buffer
	closed bool
}

func (p *pipeBuffer) Close() error {
	p.closed = true
	return nil
}

func TestNeopixel(t *testing.T) {
	buf := &pipeBuffer{}
	n := newNeopixel(buf)

	n.Idle()
	require.Equal(t, neoConnectionLost, buf.String())

	buf.Reset()
	n.Connected()
	n.Idle()
	require.Equal(t, neoNormalIdle, buf.String())

	buf.Reset()
	n.Recorded(nil)
	n.Duplicate(nil)
	n.Rejected(nil)
	require.Equal(t, neoRecorded+neoDuplicate+neoRejected, buf.String())

	buf.Reset()
	n.ConnectionLost()
	n.Idle()
	require.Equal(t, neoConnectionLost+neoConnectionLost, buf.String())

	require.NoError(t, n.Release())
	require.True(t, buf.closed)

	// Writes after release are dropped.
	buf.Reset()
	n.Shutdown()
	require.Zero(t, buf.Len())
}

type recorder struct {
	Noop
	calls []string
}

func (r *recorder) Idle()                      { r.calls = append(r.calls, "idle") }
func (r *recorder) Recorded(info *ReadInfo)    { r.calls = append(r.calls, "recorded") }
func (r *recorder) Duplicate(info *ReadInfo)   { r.calls = append(r.calls, "duplicate") }
func (r *recorder) Rejected(info *ReadInfo)    { r.calls = append(r.calls, "rejected") }
func (r *recorder) DecodeError(info *ReadInfo) { r.calls = append(r.calls, "decode") }

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := NewMulti(a, b)

	m.Recorded(nil)
	m.Duplicate(nil)
	m.Rejected(nil)
	m.DecodeError(nil)
	m.Idle()

	want := []string{"recorded", "duplicate", "rejected", "decode", "idle"}
	require.Equal(t, want, a.calls)
	require.Equal(t, want, b.calls)
	require.NoError(t, m.Release())
}

func TestNew_Noop(t *testing.T) {
	ind, err := New(Config{})
	require.NoError(t, err)
	require.IsType(t, &Noop{}, ind)
}

func TestNew_VideoWithoutScreen(t *testing.T) {
	if display.ScreenSupported() {
		t.Skip("built with screen support")
	}
	_, err := New(Config{VideoEnabled: true})
	require.ErrorIs(t, err, display.ErrScreenNotCompiled)
}

func TestConfig_Hold(t *testing.T) {
	require.Equal(t, DefaultHold, Config{}.HoldOrDefault())
	require.Equal(t, 2*DefaultHold, Config{Hold: 2 * DefaultHold}.HoldOrDefault())
}

type fakeOutput struct {
	shown  []*image.RGBA
	closed bool
}

func (f *fakeOutput) Bounds() image.Rectangle    { return image.Rect(0, 0, 80, 60) }
func (f *fakeOutput) Show(img *image.RGBA) error { f.shown = append(f.shown, img); return nil }
func (f *fakeOutput) Close() error               { f.closed = true; return nil }

func TestVideo(t *testing.T) {
	out := &fakeOutput{}
	v := NewVideo(out)

	info := &ReadInfo{Format: "H10301", BitLength: 26, FacilityCode: 129, CardNumber: 1, Hex: "2005020002"}
	v.Recorded(info)
	v.Duplicate(info)
	v.Rejected(&ReadInfo{BitLength: 40, Reason: "unsupported"})

	// Not connected yet, so idle shows the connection screen.
	v.Idle()
	v.Connected()
	v.Idle()

	require.Len(t, out.shown, 5)
	require.Equal(t, colorRecorded, out.shown[0].RGBAAt(0, 0))
	require.Equal(t, colorDuplicate, out.shown[1].RGBAAt(0, 0))
	require.Equal(t, colorRejected, out.shown[2].RGBAAt(0, 0))
	require.Equal(t, colorLost, out.shown[3].RGBAAt(0, 0))
	require.Equal(t, colorIdle, out.shown[4].RGBAAt(0, 0))

	require.NoError(t, v.Release())
	require.True(t, out.closed)
	v.Idle()
	require.Len(t, out.shown, 5)
}

func TestReadScreen(t *testing.T) {
	s := readScreen(color.Black, color.White, "Recorded", &ReadInfo{
		Format: "H10301", BitLength: 26, FacilityCode: 129, CardNumber: 1, Hex: "2005020002",
	})
	require.Equal(t, []string{"H10301 26-bit", "FC 129  CN 1", "2005020002"}, s.Lines)

	s = readScreen(color.Black, color.White, "Decode error", &ReadInfo{BitLength: 96, Reason: "parity mismatch"})
	require.Equal(t, []string{"96 bits", "parity mismatch"}, s.Lines)

	s = readScreen(color.Black, color.White, "Rejected", nil)
	require.Empty(t, s.Lines)
}
