package ppm

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample2x2 = `P3
2 2
255
255 0 0   0 255 0
0 0 255   10 20 30
`

func TestDecode(t *testing.T) {
	img, err := Decode(strings.NewReader(sample2x2))
	require.NoError(t, err)

	assert.Equal(t, 2, img.Width())
	assert.Equal(t, 2, img.Height())
	assert.Equal(t, 4, img.Len())
	assert.Equal(t, Pixel{255, 0, 0}, img.At(0, 0))
	assert.Equal(t, Pixel{0, 255, 0}, img.At(1, 0))
	assert.Equal(t, Pixel{0, 0, 255}, img.At(0, 1))
	assert.Equal(t, Pixel{10, 20, 30}, img.At(1, 1))
}

func TestDecode_Layout(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SingleLine", "P3 1 2 255 1 2 3 4 5 6"},
		{"OneValuePerLine", "P3\n1\n2\n255\n1\n2\n3\n4\n5\n6\n"},
		{"Tabs", "P3\t1\t2\t255\t1 2 3\t4 5 6"},
		{"CRLF", "P3\r\n1 2\r\n255\r\n1 2 3\r\n4 5 6\r\n"},
		{"Comments", "P3\n# made by hand\n1 2 # w h\n255\n1 2 3 #first\n#second\n4 5 6"},
		{"CommentTouchingToken", "P3#x\n1 2\n255\n1 2 3\n4 5 6#end"},
		{"TrailingData", "P3 1 2 255 1 2 3 4 5 6 7 8 9"},
		{"NoTrailingNewline", "P3\n1 2\n255\n1 2 3 4 5 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, 1, img.Width())
			assert.Equal(t, 2, img.Height())
			assert.Equal(t, []Pixel{{1, 2, 3}, {4, 5, 6}}, img.Pixels())
		})
	}
}

func TestDecode_MaxValNotApplied(t *testing.T) {
	// maxval is read but channels are neither validated nor rescaled
	img, err := Decode(strings.NewReader("P3 1 1 15 300 -4 7"))
	require.NoError(t, err)
	assert.Equal(t, Pixel{300, -4, 7}, img.At(0, 0))

	h, err := DecodeHeader(strings.NewReader("P3 1 1 15 300 -4 7"))
	require.NoError(t, err)
	assert.Equal(t, Header{Width: 1, Height: 1, MaxVal: 15}, h)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Empty", "", ErrFormat},
		{"OnlyComment", "# nothing here\n", ErrFormat},
		{"BinaryMagic", "P6 1 1 255 \x00\x00\x00", ErrFormat},
		{"LowerCaseMagic", "p3 1 1 255 0 0 0", ErrFormat},
		{"MissingHeight", "P3 1", ErrFormat},
		{"MissingMaxVal", "P3 1 1", ErrFormat},
		{"BadWidth", "P3 x 1 255 0 0 0", ErrFormat},
		{"ZeroWidth", "P3 0 1 255", ErrFormat},
		{"NegativeHeight", "P3 1 -1 255", ErrFormat},
		{"BadChannel", "P3 1 1 255 1 two 3", ErrFormat},
		{"Huge", "P3 1000000 1000000 255", ErrAllocation},
		{"HugeShort", "P3 16384 16384 255 1 2 3", ErrTruncated},
		{"MaxPixelsShort", "P3 16384 16384 255", ErrTruncated},
		{"NoPixels", "P3 1 1 255", ErrTruncated},
		{"ShortPixel", "P3 1 1 255 1 2", ErrTruncated},
		{"ShortImage", "P3 2 2 255 1 2 3 4 5 6 7 8 9", ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, img)
		})
	}
}

func TestDecode_TruncatedCount(t *testing.T) {
	_, err := Decode(strings.NewReader("P3 2 1 255 1 2 3 4"))
	require.ErrorIs(t, err, ErrTruncated)
	assert.Contains(t, err.Error(), "got 4 of 6")
}

func TestDecode_GrowsPastInitialChunk(t *testing.T) {
	// more pixels than the initial capacity, all supplied
	w, h := decodeChunk/2+3, 3
	var sb strings.Builder
	fmt.Fprintf(&sb, "P3 %d %d 255\n", w, h)
	for i := 0; i < w*h; i++ {
		fmt.Fprintf(&sb, "%d %d %d\n", i%256, (i/256)%256, 7)
	}
	img, err := Decode(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Equal(t, w*h, img.Len())
	last := w*h - 1
	assert.Equal(t, Pixel{last % 256, (last / 256) % 256, 7}, img.Pixels()[last])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestDecode_ReaderFailure(t *testing.T) {
	_, err := Decode(failingReader{})
	assert.ErrorIs(t, err, ErrIO)
}

func TestEncode(t *testing.T) {
	img, err := FromPixels(2, 1, []Pixel{{10, 20, 30}, {200, 100, 50}})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Encode(&buf, img)
	require.NoError(t, err)

	want := "P3\n2 1\n255\n10 20 30\n200 100 50\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, int64(len(want)), n)
}

func TestEncode_AlwaysWritesMaxVal255(t *testing.T) {
	img, err := Decode(strings.NewReader("P3 1 1 15 1 2 3"))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Encode(&buf, img)
	require.NoError(t, err)
	assert.Equal(t, "P3\n1 1\n255\n1 2 3\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no space left") }

func TestEncode_WriterFailure(t *testing.T) {
	img, err := New(1, 1)
	require.NoError(t, err)
	n, err := Encode(failingWriter{}, img)
	assert.ErrorIs(t, err, ErrIO)
	assert.Zero(t, n)
}

func TestRoundTrip(t *testing.T) {
	orig, err := Decode(strings.NewReader(sample2x2))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Encode(&buf, orig)
	require.NoError(t, err)

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.True(t, orig.Equal(again), "round trip changed pixels")
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ppm")
	require.NoError(t, os.WriteFile(in, []byte(sample2x2), 0644))

	img, err := ReadFile(in)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.ppm")
	n, err := WriteFile(out, img)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), n)

	back, err := ReadFile(out)
	require.NoError(t, err)
	assert.True(t, img.Equal(back))
}

func TestReadWriteFile_IOErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.ppm"))
	assert.ErrorIs(t, err, ErrIO)

	img, err := New(1, 1)
	require.NoError(t, err)
	_, err = WriteFile(filepath.Join(dir, "no", "such", "dir.ppm"), img)
	assert.ErrorIs(t, err, ErrIO)
}

func TestNew(t *testing.T) {
	img, err := New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Len())
	assert.Equal(t, 5, img.Index(2, 1))

	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-2, 3}} {
		_, err := New(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrFormat, "dims %v", dims)
	}
	_, err = New(1<<20, 1<<20)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestFromPixels_LengthMismatch(t *testing.T) {
	_, err := FromPixels(2, 2, make([]Pixel, 3))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCloneEqual(t *testing.T) {
	img, err := FromPixels(1, 2, []Pixel{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	c := img.Clone()
	assert.True(t, img.Equal(c))

	c.Set(0, 1, Pixel{9, 9, 9})
	assert.False(t, img.Equal(c))
	assert.Equal(t, Pixel{4, 5, 6}, img.At(0, 1), "clone must not alias")

	other, err := FromPixels(2, 1, []Pixel{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.False(t, img.Equal(other), "same pixels, different shape")
}

func TestMinMax(t *testing.T) {
	img, err := FromPixels(2, 1, []Pixel{{10, 300, 30}, {-5, 100, 50}})
	require.NoError(t, err)
	lo, hi := img.MinMax()
	assert.Equal(t, -5, lo)
	assert.Equal(t, 300, hi)
}

func TestToRGBA(t *testing.T) {
	img, err := FromPixels(2, 1, []Pixel{{300, -1, 128}, {1, 2, 3}})
	require.NoError(t, err)

	rgba := img.ToRGBA()
	assert.Equal(t, image.Rect(0, 0, 2, 1), rgba.Bounds())
	assert.Equal(t, color.RGBA{255, 0, 128, 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, rgba.RGBAAt(1, 0))

	back := FromImage(rgba)
	require.NotNil(t, back)
	assert.Equal(t, []Pixel{{255, 0, 128}, {1, 2, 3}}, back.Pixels())
}

func TestFromImage_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(5, 5, color.RGBA{1, 2, 3, 255})
	src.SetRGBA(6, 5, color.RGBA{4, 5, 6, 255})

	img := FromImage(src)
	require.NotNil(t, img)
	assert.Equal(t, 2, img.Width())
	assert.Equal(t, 1, img.Height())
	assert.Equal(t, []Pixel{{1, 2, 3}, {4, 5, 6}}, img.Pixels())

	assert.Nil(t, FromImage(image.NewRGBA(image.Rectangle{})))
}
