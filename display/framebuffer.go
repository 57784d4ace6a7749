//go:build screen

package display

import (
	"fmt"
	"image"
	"log"
	"os"

	"github.com/d21d3q/framebuffer"
)

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

// Framebuffer is an RGB565 Linux framebuffer. The mapping lives for the
// life of the process.
type Framebuffer struct {
	pix        []byte
	back       []byte
	width      int
	height     int
	lineLength int
}

// OpenFramebuffer maps the framebuffer device at path.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	dev, err := framebuffer.OpenFrameBuffer(path, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer: %w", err)
	}

	varInfo, err := dev.VarScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("get variable screen info: %w", err)
	}
	fixedInfo, err := dev.FixScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("get fixed screen info: %w", err)
	}
	pix, err := dev.Pixels()
	if err != nil {
		return nil, fmt.Errorf("get pixel data: %w", err)
	}

	fb := &Framebuffer{
		pix:        pix,
		width:      int(varInfo.XRes),
		height:     int(varInfo.YRes),
		lineLength: int(fixedInfo.LineLength),
	}
	fb.back = make([]byte, fb.height*fb.lineLength)

	log.Printf("Display: framebuffer %dx%d, %d bpp, stride %d bytes",
		fb.width, fb.height, varInfo.BitsPerPixel, fb.lineLength)
	return fb, nil
}

func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// Show converts img into the back buffer and copies it to the screen in
// one pass.
func (fb *Framebuffer) Show(img *image.RGBA) error {
	ToRGB565(fb.back, fb.lineLength, Fit(img, fb.width, fb.height))
	copy(fb.pix, fb.back)
	return nil
}

func (fb *Framebuffer) Close() error {
	for i := range fb.pix {
		fb.pix[i] = 0
	}
	return nil
}
