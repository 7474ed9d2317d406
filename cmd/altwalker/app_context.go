package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/alog"
)

// AppContext bundles the long-lived services created at startup.
type AppContext struct {
	Logger alog.Logger
}

// CommandContext returns the command's context (falling back to
// Background) together with a component-scoped logger.
func (a *AppContext) CommandContext(cmd *cobra.Command, component string) (context.Context, alog.Logger) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	return ctx, a.LoggerFor(component)
}

// LoggerFor derives a child logger scoped to the named component.
func (a *AppContext) LoggerFor(component string) alog.Logger {
	if a == nil || a.Logger == nil {
		return alog.NoOp()
	}
	return a.Logger.With("component", component)
}
