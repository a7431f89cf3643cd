package ppm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Header is the parsed preamble of a P3 file. MaxVal is reported as read;
// it is not checked against the channel data and never used to rescale.
type Header struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	MaxVal int `json:"maxval"`
}

// decodeChunk caps the initial pixel allocation of Decode.
const decodeChunk = 1 << 16

// ReadFile decodes the P3 image at path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a complete P3 image. Either every pixel is filled from r or
// an error is returned; a partially populated image never escapes.
func Decode(r io.Reader) (*Image, error) {
	s := newTokenizer(r)
	h, err := s.header()
	if err != nil {
		return nil, err
	}
	n, err := pixelCount(h.Width, h.Height)
	if err != nil {
		return nil, err
	}

	// capacity follows the data; the header alone never sizes the buffer
	pix := make([]Pixel, 0, min(n, decodeChunk))
	want := n * 3
	for i := 0; i < n; i++ {
		var p Pixel
		for c, dst := range [3]*int{&p.R, &p.G, &p.B} {
			v, err := s.int()
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: got %d of %d channel values", ErrTruncated, i*3+c, want)
			}
			if err != nil {
				return nil, fmt.Errorf("pixel %d: %w", i, err)
			}
			*dst = v
		}
		pix = append(pix, p)
	}
	return &Image{width: h.Width, height: h.Height, pix: pix}, nil
}

// DecodeHeader reads only the magic, dimensions and maxval.
func DecodeHeader(r io.Reader) (Header, error) {
	return newTokenizer(r).header()
}

// tokenizer splits a P3 stream into whitespace separated tokens, skipping
// '#' comments that run to the end of the line.
type tokenizer struct {
	r   *bufio.Reader
	buf bytes.Buffer
}

func newTokenizer(r io.Reader) *tokenizer {
	return &tokenizer{r: bufio.NewReader(r)}
}

func (t *tokenizer) header() (Header, error) {
	magic, err := t.next()
	if errors.Is(err, io.EOF) {
		return Header{}, fmt.Errorf("%w: empty input", ErrFormat)
	}
	if err != nil {
		return Header{}, err
	}
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: unsupported magic %q, want %q", ErrFormat, magic, Magic)
	}

	var h Header
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"width", &h.Width},
		{"height", &h.Height},
		{"maxval", &h.MaxVal},
	} {
		v, err := t.int()
		if errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: missing %s", ErrFormat, f.name)
		}
		if err != nil {
			return Header{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if h.Width <= 0 || h.Height <= 0 {
		return Header{}, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrFormat, h.Width, h.Height)
	}
	return h, nil
}

func (t *tokenizer) int() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrFormat, tok)
	}
	return v, nil
}

// next returns io.EOF only when no further token exists.
func (t *tokenizer) next() (string, error) {
	t.buf.Reset()
	comment := false
	for {
		b, err := t.r.ReadByte()
		if errors.Is(err, io.EOF) {
			if t.buf.Len() > 0 {
				return t.buf.String(), nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrIO, err)
		}
		switch {
		case comment:
			comment = b != '\n' && b != '\r'
		case isSpace(b):
			if t.buf.Len() > 0 {
				return t.buf.String(), nil
			}
		case b == '#':
			if t.buf.Len() > 0 {
				t.r.UnreadByte()
				return t.buf.String(), nil
			}
			comment = true
		default:
			t.buf.WriteByte(b)
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
