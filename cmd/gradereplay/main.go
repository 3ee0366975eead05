// Package main replays stored grade logs and prints the resulting grades.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/louisbranch/gradebook/internal/platform/cmd"
	"github.com/louisbranch/gradebook/internal/platform/config"
	"github.com/louisbranch/gradebook/internal/tools/gradereplay"
)

func main() {
	cfg, err := gradereplay.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitWithCodef(gradereplay.ExitInvalidArgument, "Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceGradeReplay, func(ctx context.Context) error {
		return gradereplay.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		stop()
		cancel()
		config.ExitWithCodef(gradereplay.ExitCode(err), "Error: %v", err)
	}
}
