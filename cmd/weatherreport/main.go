package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gospodinfran/weather-cli/internal/app"
	"github.com/gospodinfran/weather-cli/internal/config"
	"github.com/gospodinfran/weather-cli/internal/logging"
	"github.com/gospodinfran/weather-cli/internal/prompt"
	"github.com/gospodinfran/weather-cli/internal/weather"
)

var version = "dev"
var appName = "weatherreport"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.Run(ctx, cfg, os.Stdin, os.Stdout, logger)
	stop()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr and maps it to the process status.
func exitCode(err error) int {
	var inErr *prompt.InputError
	var opErr weather.OperationError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &inErr):
		fmt.Fprintf(os.Stderr, "%v\n", inErr)
		return 2
	case errors.As(err, &opErr):
		fmt.Fprintf(os.Stderr, "error: %v\n", opErr)
		return 1
	default:
		slog.Error("run failed", "err", err)
		return 1
	}
}
