package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vnFuhung2903/vcs-search-toolkit/cmd/esctl/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
