// Package planner implements the Planner layer: a uniform abstraction over
// path sources consumed by the walker, with an online variant backed by a
// running path-generator subprocess and an offline variant replaying a
// fixed, pre-computed sequence of steps.
package planner

import (
	"context"

	"github.com/altwalker/altwalker-go/internal/model"
)

// Planner supplies the next step and cumulative statistics to the walker.
// All methods are safe to call only from the walker's single goroutine;
// there is no internal synchronization.
type Planner interface {
	HasNext(ctx context.Context) (bool, error)
	GetNext(ctx context.Context) (model.Step, error)
	GetData(ctx context.Context) (map[string]string, error)
	SetData(ctx context.Context, key string, value any) error
	Restart(ctx context.Context) error
	Fail(ctx context.Context, message string) error
	GetStatistics(ctx context.Context) (model.Statistics, error)
	Close()
}
