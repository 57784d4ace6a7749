//go:build !screen

package display

import "image"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Framebuffer is a stub when screen support is not compiled in.
type Framebuffer struct{}

// OpenFramebuffer returns an error when screen support is not compiled in.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	return nil, ErrScreenNotCompiled
}

func (fb *Framebuffer) Bounds() image.Rectangle    { return image.Rectangle{} }
func (fb *Framebuffer) Show(img *image.RGBA) error { return ErrScreenNotCompiled }
func (fb *Framebuffer) Close() error               { return nil }
