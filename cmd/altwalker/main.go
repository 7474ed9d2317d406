package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/altwalker/altwalker-go/internal/alog"
)

func main() {
	logger, err := alog.New(alog.Options{Level: "info", Component: "cli"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "altwalker: failed to create logger: %v\n", err)
		os.Exit(exitInternalError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = alog.WithCorrelationID(ctx, alog.NewCorrelationID())

	app := &AppContext{Logger: logger}
	rootCmd := newRootCmd(app)
	logger.Info(ctx, "starting altwalker", "pid", os.Getpid())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if err != errRunFailed {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCodeFor(err))
	}
}
