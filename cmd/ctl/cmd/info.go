package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jpfielding/ppm.go/pkg/ppm"
	"github.com/jpfielding/ppm.go/pkg/util"
	"github.com/spf13/cobra"
)

type imageInfo struct {
	ppm.Header
	Pixels    int    `json:"pixels"`
	MinValue  int    `json:"min"`
	MaxValue  int    `json:"max"`
	ContentID string `json:"content_id"`
	Digest    string `json:"md5"`
}

// NewInfoCmd creates the info cobra command
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "describe a PPM image",
		Long:  "Parses a P3 image and prints its header, channel range and a content id that is stable across formatting differences.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("input")
			format, _ := cmd.Flags().GetString("format")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --input flag or provide as argument")
			}

			info, err := readInfo(filePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprintf(out, "Size: %dx%d\n", info.Width, info.Height)
				fmt.Fprintf(out, "MaxVal: %d\n", info.MaxVal)
				fmt.Fprintf(out, "Pixels: %d\n", info.Pixels)
				fmt.Fprintf(out, "Channel range: min=%d, max=%d\n", info.MinValue, info.MaxValue)
				fmt.Fprintf(out, "Content ID: %s\n", info.ContentID)
				fmt.Fprintf(out, "MD5: %s\n", info.Digest)
			default:
				j, _ := json.Marshal(info)
				fmt.Fprintln(out, string(j))
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("input", "i", "", "P3 image to describe ('-' for stdin)")
	pf.StringP("format", "f", "json", "output format (text|json)")
	return cmd
}

func readInfo(path string, stdin io.Reader) (*imageInfo, error) {
	f, err := openInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ppm.ErrIO, path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ppm.ErrIO, path, err)
	}

	h, err := ppm.DecodeHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img, err := ppm.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// the digest covers the canonical encoding, not the source bytes
	var canon bytes.Buffer
	if _, err := ppm.Encode(&canon, img); err != nil {
		return nil, err
	}
	lo, hi := img.MinMax()
	return &imageInfo{
		Header:    h,
		Pixels:    img.Len(),
		MinValue:  lo,
		MaxValue:  hi,
		ContentID: util.HashUUID(img.Pixels()),
		Digest:    util.Md5ThenHex(canon.Bytes()),
	}, nil
}
