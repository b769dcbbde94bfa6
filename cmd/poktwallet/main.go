// Package main is the entry point for the poktwallet CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrz1836/poktwallet/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
