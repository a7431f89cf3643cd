package pipeline

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/jpfielding/ppm.go/pkg/config"
	"github.com/jpfielding/ppm.go/pkg/ppm"
	"github.com/jpfielding/ppm.go/pkg/transform"
)

const DefaultOutput = config.DefaultOutput

// Options controls a single decode → transform → encode run.
type Options struct {
	Input     string // required: P3 source path
	Output    string // optional: defaults to DefaultOutput
	Transform string // required: name, alias or menu number
	Preview   string // optional: also write the result as PNG
}

// Result holds the output of a pipeline run.
type Result struct {
	Transform string
	Output    string
	Written   int64 // bytes of P3 written
	SrcWidth  int
	SrcHeight int
	Width     int
	Height    int
}

// Run executes decode → transform → encode. The transform is resolved
// before the input is read, so a bad selection touches no files.
func Run(ctx context.Context, opts Options) (*Result, error) {
	tr, err := transform.Lookup(opts.Transform)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == "" {
		out = DefaultOutput
	}

	// 1. Decode
	img, err := ppm.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	res := &Result{
		Transform: tr.Name(),
		Output:    out,
		SrcWidth:  img.Width(),
		SrcHeight: img.Height(),
	}
	slog.DebugContext(ctx, "decoded", "input", opts.Input, "width", img.Width(), "height", img.Height())

	// 2. Transform; geometry changes hand back a new image that replaces
	// the current one along with its dimensions
	img = tr.Apply(img)
	res.Width, res.Height = img.Width(), img.Height()
	slog.DebugContext(ctx, "transformed", "transform", tr.Name(), "width", res.Width, "height", res.Height)

	// 3. Encode
	res.Written, err = ppm.WriteFile(out, img)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	if opts.Preview != "" {
		if err := writePNG(opts.Preview, img); err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		slog.DebugContext(ctx, "preview written", "path", opts.Preview)
	}

	slog.InfoContext(ctx, "image transformed",
		"transform", tr.Name(),
		"output", out,
		"bytes", res.Written,
		"width", res.Width,
		"height", res.Height,
	)
	return res, nil
}

func writePNG(path string, img *ppm.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ppm.ErrIO, path, err)
	}
	if err := png.Encode(f, img.ToRGBA()); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ppm.ErrIO, err)
	}
	return f.Close()
}
