// Package main is the entry point for fresh-init.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumangal44/fresh/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(cmd.PrintError(os.Stderr, err))
	}
}
