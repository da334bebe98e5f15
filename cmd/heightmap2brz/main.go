package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/brickadia-community/heightmap2brz/internal/cli"
	"github.com/brickadia-community/heightmap2brz/pkg/gen"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, gen.ErrCancelled) {
			os.Exit(130) // standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}
