package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshsymonds/labelsweep/internal/cli"
	"github.com/joshsymonds/labelsweep/internal/runtime"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd(cli.Deps{}).ExecuteContext(ctx)
	cancel()
	if err != nil {
		runtime.DefaultLogger().Error("labelsweep failed", "error", err)
		os.Exit(1)
	}
}
