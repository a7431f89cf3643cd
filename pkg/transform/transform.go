// Package transform implements the pixel and geometric operations applied to
// a decoded ppm.Image.
//
// Float to int conversions truncate toward zero. Each product is converted
// to float64 explicitly before it is summed so the compiler cannot fuse the
// multiply-add, which keeps results bit-identical across architectures.
package transform

import (
	"math"

	"github.com/jpfielding/ppm.go/pkg/ppm"
)

// Luma is the truncated Rec. 601 weighted brightness of p.
func Luma(p ppm.Pixel) int {
	return int(float64(float64(p.R)*0.299) + float64(float64(p.G)*0.587) + float64(float64(p.B)*0.114))
}

// Grayscale sets every channel to the pixel's luma.
func Grayscale(img *ppm.Image) {
	pix := img.Pixels()
	for i := range pix {
		l := Luma(pix[i])
		pix[i] = ppm.Pixel{R: l, G: l, B: l}
	}
}

// Negative inverts each channel against 255.
func Negative(img *ppm.Image) {
	pix := img.Pixels()
	for i := range pix {
		p := &pix[i]
		p.R, p.G, p.B = 255-p.R, 255-p.G, 255-p.B
	}
}

// XRay raises the luma to the power 1.5, capped at 255.
func XRay(img *ppm.Image) {
	pix := img.Pixels()
	for i := range pix {
		v := xray(Luma(pix[i]))
		pix[i] = ppm.Pixel{R: v, G: v, B: v}
	}
}

func xray(luma int) int {
	// Pow of a negative base is NaN
	if luma <= 0 {
		return 0
	}
	v := math.Pow(float64(luma), 1.5)
	if v > 255 {
		return 255
	}
	return int(v)
}

// Sepia applies a per-channel tone curve: red and green are lifted, blue is
// pulled down. Each output uses only the pixel's own channel.
func Sepia(img *ppm.Image) {
	pix := img.Pixels()
	for i := range pix {
		p := &pix[i]
		p.R = int(math.Min(255, float64(float64(p.R)*1.1)+10))
		p.G = int(math.Min(255, float64(float64(p.G)*1.1)+10))
		p.B = int(math.Max(0, float64(float64(p.B)*0.9)-10))
	}
}

// Rotate90 returns a new image rotated a quarter turn clockwise. The result
// is Height() wide and Width() tall; src is left untouched.
func Rotate90(src *ppm.Image) *ppm.Image {
	dst := transposed(src)
	newWidth := dst.Width()
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.Set(newWidth-1-y, x, src.At(x, y))
		}
	}
	return dst
}

// Rotate270 returns a new image rotated a quarter turn counter-clockwise,
// sending (x, y) to (y, newHeight-1-x).
func Rotate270(src *ppm.Image) *ppm.Image {
	dst := transposed(src)
	newHeight := dst.Height()
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.Set(y, newHeight-1-x, src.At(x, y))
		}
	}
	return dst
}

// transposed allocates an image with src's dimensions swapped. A valid
// source always has a valid transpose.
func transposed(src *ppm.Image) *ppm.Image {
	dst, err := ppm.New(src.Height(), src.Width())
	if err != nil {
		panic(err)
	}
	return dst
}

// Rotate180 reverses the pixel order in place.
func Rotate180(img *ppm.Image) {
	pix := img.Pixels()
	total := len(pix)
	for i := 0; i < total/2; i++ {
		pix[i], pix[total-1-i] = pix[total-1-i], pix[i]
	}
}
