package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/halfbit/cli"
	"github.com/ardnew/halfbit/cli/cmd"
	"github.com/ardnew/halfbit/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Debug(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
		fmt.Fprint(os.Stderr, cmd.Describe(err))
		os.Exit(cmd.ExitCode(err))
	}
}
