package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stxpipe/internal/app"
	"stxpipe/internal/cli"
	"stxpipe/internal/core"
	"stxpipe/pkg/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	lg := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := app.NewRegistry()
	if err != nil {
		log.Fatalf("build registry: %v", err)
	}

	root, err := cli.New(r, lg, buildVersion())
	if err != nil {
		log.Fatalf("build cli: %v", err)
	}
	if err := root.ExecuteContext(ctx); err != nil {
		lg.Error("command failed", "err", err)
		os.Exit(exitCode(err))
	}
}

// exitCode различает классы отказов: 2 — конфигурация, 1 — выполнение.
func exitCode(err error) int {
	if errors.Is(err, core.ErrConfig) {
		return 2
	}
	return 1
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
