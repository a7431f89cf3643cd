// Package ppm reads and writes plain (ASCII, "P3") portable pixmaps into a
// flat row-major pixel buffer.
package ppm

import (
	"errors"
	"fmt"
	"math"
)

// Magic is the only header token accepted by Decode.
const Magic = "P3"

// MaxVal is always written as the maximum channel value.
const MaxVal = 255

// MaxPixels bounds the buffer a single image may allocate.
const MaxPixels = 1 << 28

var (
	ErrIO         = errors.New("ppm: i/o failure")
	ErrFormat     = errors.New("ppm: invalid format")
	ErrTruncated  = errors.New("ppm: truncated pixel data")
	ErrAllocation = errors.New("ppm: cannot allocate pixel buffer")
)

// Pixel holds one RGB triple. Channels are nominally 0-255 but are not
// clamped here; arithmetic may push them out of range until a transform
// clamps them.
type Pixel struct {
	R, G, B int
}

// Image is a row-major buffer of width*height pixels.
type Image struct {
	width  int
	height int
	pix    []Pixel
}

// New allocates a zeroed width x height image.
func New(width, height int) (*Image, error) {
	n, err := pixelCount(width, height)
	if err != nil {
		return nil, err
	}
	return &Image{width: width, height: height, pix: make([]Pixel, n)}, nil
}

// FromPixels adopts pix as the backing store of a width x height image.
// The caller must not retain pix.
func FromPixels(width, height int, pix []Pixel) (*Image, error) {
	n, err := pixelCount(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != n {
		return nil, fmt.Errorf("%w: %dx%d image needs %d pixels, got %d", ErrFormat, width, height, n, len(pix))
	}
	return &Image{width: width, height: height, pix: pix}, nil
}

func pixelCount(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrFormat, width, height)
	}
	if width > math.MaxInt/height || width*height > MaxPixels {
		return 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, width, height, MaxPixels)
	}
	return width * height, nil
}

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

// Len is the number of pixels, always Width()*Height().
func (m *Image) Len() int { return len(m.pix) }

// Pixels returns the backing slice. Writes through it mutate the image.
func (m *Image) Pixels() []Pixel { return m.pix }

// Index maps (x, y) to its row-major offset.
func (m *Image) Index(x, y int) int { return y*m.width + x }

func (m *Image) At(x, y int) Pixel { return m.pix[m.Index(x, y)] }

func (m *Image) Set(x, y int, p Pixel) { m.pix[m.Index(x, y)] = p }

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]Pixel, len(m.pix))
	copy(pix, m.pix)
	return &Image{width: m.width, height: m.height, pix: pix}
}

// Equal reports whether both images have the same dimensions and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// MinMax returns the smallest and largest channel value in the image.
func (m *Image) MinMax() (int, int) {
	lo, hi := m.pix[0].R, m.pix[0].R
	for _, p := range m.pix {
		for _, c := range [3]int{p.R, p.G, p.B} {
			lo = min(lo, c)
			hi = max(hi, c)
		}
	}
	return lo, hi
}
