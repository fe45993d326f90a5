package main

import (
	"context"
	"os"

	"github.com/snapwatch/tiktok-monitor/internal/app"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	app := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := app.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Blocks until an interrupt signal or an internal shutdown request,
	// e.g. the end of a single-run cycle.
	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
