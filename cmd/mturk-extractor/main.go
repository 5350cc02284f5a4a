package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"mturk-extractor/cmd/mturk-extractor/commands"
	"mturk-extractor/lib/serviceutil"
	"mturk-extractor/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "mturk-extractor")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry, continuing without it", "err", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tel.Shutdown(shutdownCtx)

	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
