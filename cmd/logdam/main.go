package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"logdam/internal/cli"
	"logdam/internal/util/logx"
)

func main() {
	logx.SetLevelFromEnv()

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand(ctx).Execute(); err != nil {
		logx.Errorf("logdam exited with error: %v", err)
		fmt.Fprintln(os.Stderr, "logdam:", err)
		cancel()
		os.Exit(1)
	}
}
