// File: cmd/handrail/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/handrail/cmd"
	"github.com/xkilldash9x/handrail/internal/observability"
)

func main() {
	// Interrupt signals cancel the context so an in-flight browser session
	// shuts down cleanly instead of leaving an orphaned process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
