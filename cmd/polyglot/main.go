package main

import (
	"context"
	"os"
	"os/signal"

	"go.followtheprocess.codes/polyglot/internal/cmd"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return cmd.Execute(ctx)
}
