package display

import (
	"encoding/binary"
	"image"

	"golang.org/x/image/draw"
)

// Fit scales img to w x h. It returns img unchanged if it is already that
// size.
func Fit(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToRGB565 packs img into dst as little-endian RGB565 rows of stride
// bytes. Pixels that do not fit in dst are skipped.
func ToRGB565(dst []byte, stride int, img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r := uint16(img.Pix[i]) >> 3
			g := uint16(img.Pix[i+1]) >> 2
			bl := uint16(img.Pix[i+2]) >> 3

			off := y*stride + x*2
			if off+1 >= len(dst) {
				continue
			}
			binary.LittleEndian.PutUint16(dst[off:], r<<11|g<<5|bl)
		}
	}
}
