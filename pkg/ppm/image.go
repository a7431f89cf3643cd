package ppm

import (
	"image"
	"image/color"
)

func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// ToRGBA converts to an opaque *image.RGBA, clamping each channel to 0-255.
func (m *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(m.Bounds())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			p := m.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: clamp8(p.R), G: clamp8(p.G), B: clamp8(p.B), A: 0xff})
		}
	}
	return out
}

// FromImage copies any image.Image into a new Image, dropping alpha.
// It returns nil for an empty image.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			img.Set(x, y, Pixel{R: int(r >> 8), G: int(g >> 8), B: int(bl >> 8)})
		}
	}
	return img
}

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
