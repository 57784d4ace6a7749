// Package display renders read feedback screens and pushes them to a
// framebuffer.
package display

import (
	"errors"
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// DefaultDevice is the framebuffer device opened by OpenFramebuffer.
const DefaultDevice = "/dev/fb0"

// ErrScreenNotCompiled is returned when screen support was not compiled in.
var ErrScreenNotCompiled = errors.New("screen support not compiled in (build with -tags=screen)")

// FontPath is the TrueType face used for text. If it cannot be loaded the
// built-in bitmap face is used.
var FontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// Output is a surface screens are shown on.
type Output interface {
	Bounds() image.Rectangle
	Show(img *image.RGBA) error
	Close() error
}

// Screen is one full-screen message.
type Screen struct {
	Background color.Color
	Foreground color.Color
	Title      string
	Lines      []string
}

var fontOnce sync.Once

// Render draws s over the whole of img.
func Render(img *image.RGBA, s Screen) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	dc := gg.NewContextForRGBA(img)
	dc.SetColor(s.Background)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	fg := s.Foreground
	if fg == nil {
		fg = color.White
	}
	dc.SetColor(fg)

	titleSize := h / 6
	lineSize := h / 10

	y := h/2 - float64(len(s.Lines))*lineSize*0.6
	if s.Title != "" {
		setFontSize(dc, titleSize)
		dc.DrawStringAnchored(s.Title, w/2, y, 0.5, 0.5)
		y += titleSize
	}

	setFontSize(dc, lineSize)
	for _, line := range s.Lines {
		dc.DrawStringAnchored(line, w/2, y, 0.5, 0.5)
		y += lineSize * 1.2
	}
}

func setFontSize(dc *gg.Context, size float64) {
	if err := dc.LoadFontFace(FontPath, size); err != nil {
		fontOnce.Do(func() {
			log.Printf("Display: failed to load font, using built-in: %v", err)
		})
		dc.SetFontFace(basicfont.Face7x13)
	}
}

// Show renders s at the size of out and displays it.
func Show(out Output, s Screen) error {
	img := image.NewRGBA(out.Bounds())
	Render(img, s)
	return out.Show(img)
}
