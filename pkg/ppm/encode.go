package ppm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"
)

// WriteFile encodes img to path, creating or truncating it.
func WriteFile(path string, img *Image) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: creating %s: %w", ErrIO, path, err)
	}
	n, err := Encode(f, img)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: closing %s: %w", ErrIO, path, cerr)
	}
	return n, err
}

// Encode writes img as P3 with one pixel per line. The maxval is always
// MaxVal regardless of the channel range.
func Encode(w io.Writer, img *Image) (int64, error) {
	cw := &CountingWriter{Writer: w}
	bw := bufio.NewWriter(cw)

	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, img.width, img.height, MaxVal); err != nil {
		return cw.Count.Load(), fmt.Errorf("%w: writing header: %w", ErrIO, err)
	}
	line := make([]byte, 0, 16)
	for _, p := range img.pix {
		line = strconv.AppendInt(line[:0], int64(p.R), 10)
		line = append(line, ' ')
		line = strconv.AppendInt(line, int64(p.G), 10)
		line = append(line, ' ')
		line = strconv.AppendInt(line, int64(p.B), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return cw.Count.Load(), fmt.Errorf("%w: writing pixels: %w", ErrIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.Count.Load(), fmt.Errorf("%w: flushing: %w", ErrIO, err)
	}
	return cw.Count.Load(), nil
}

// CountingWriter tallies bytes successfully written to Writer.
type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}
