package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/jpfielding/ppm.go/cmd/ctl/cmd"
	"github.com/jpfielding/ppm.go/pkg/logging"
	"github.com/jpfielding/ppm.go/pkg/util"
)

var (
	GitSHA string = "NA"
)

func main() {
	// register sigterm for graceful shutdown
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc() // this cnc is from notify and removes the signal so subsequent ctrl-c will restore kill functions
		<-ctx.Done()
	}()
	ctx = logging.AppendCtx(ctx,
		slog.Group("ppm",
			slog.String("name", "ctl"),
			slog.String("git", GitSHA),
			slog.String("run", util.NewRunID()),
		))
	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		os.Exit(1)
	}
}
