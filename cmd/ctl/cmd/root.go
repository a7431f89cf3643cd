package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/ppm.go/pkg/config"
	"github.com/jpfielding/ppm.go/pkg/logging"
	"github.com/spf13/cobra"
)

// settings is shared by every subcommand and filled in before they run
type settings struct {
	cfg *config.Config
	log io.Closer
}

// closeLog releases the log file sink, if one was opened
func (st *settings) closeLog() {
	if st.log != nil {
		st.log.Close()
		st.log = nil
	}
}

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	return newRoot(ctx, gitsha, &settings{cfg: config.DefaultConfig()})
}

func newRoot(ctx context.Context, gitsha string, st *settings) *cobra.Command {
	// finalizers run after every Execute, including failed runs
	cobra.OnFinalize(st.closeLog)
	cmd := &cobra.Command{
		Use:          "ppmctl",
		Short:        "a CLI to transform plain PPM (P3) images",
		Long:         "Decodes a P3 image, applies one transform (grayscale, negative, x-ray, sepia, rotations) and writes the result as P3.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				cfg, err := config.Load(path)
				if err != nil {
					return err
				}
				st.cfg = cfg
			}
			pf := cmd.Flags()
			if pf.Changed("log-level") {
				st.cfg.Logging.Level, _ = pf.GetString("log-level")
			}
			if pf.Changed("log-file") {
				st.cfg.Logging.File, _ = pf.GetString("log-file")
			}
			if pf.Changed("log-json") {
				st.cfg.Logging.JSON, _ = pf.GetBool("log-json")
			}

			// Parse log level
			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(st.cfg.Logging.Level)))
			if levelErr != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = cmd.ErrOrStderr()
			if st.cfg.Logging.File != "" {
				f := logging.RotatingFile(st.cfg.Logging.File, st.cfg.Logging.MaxSizeMB, st.cfg.Logging.MaxBackups)
				st.log = f
				w = io.MultiWriter(w, f)
			}
			slog.SetDefault(logging.Logger(w, st.cfg.Logging.JSON, level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", st.cfg.Logging.Level, "error", levelErr)
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewTransformCmd(ctx, st),
		NewInfoCmd(ctx),
		NewListCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "Also write logs to this file, rotated by size")
	pf.Bool("log-json", false, "Emit logs as JSON")
	pf.String("config", "", "YAML file with default settings")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

// openInput is os.Open with "-" meaning stdin
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}
