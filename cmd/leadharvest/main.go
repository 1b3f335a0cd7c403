package main

import (
	"context"

	"leadharvest/cmd/leadharvest/commands"
	"leadharvest/lib/serviceutil"
	"leadharvest/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	err := telemetry.SetupFromEnv(ctx, "leadharvest")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)

	telemetry.Shutdown(context.Background())
}
