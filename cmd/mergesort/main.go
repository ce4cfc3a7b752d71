// Command mergesort is the engine's entrypoint: local sort, distributed
// coordinator/worker roles, test-fixture generation, and output
// verification, all as subcommands of one binary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/skiby7/parallel-external-mergesort/command"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := command.Main(ctx, os.Args)
	if err == nil {
		os.Exit(0)
	}

	if exitErr, ok := err.(cli.ExitCoder); ok {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(1)
}
