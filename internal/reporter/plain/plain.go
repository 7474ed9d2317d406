// Package plain implements a human-readable reporter that writes step
// progress to the shared structured logger as the run proceeds.
package plain

import (
	"context"
	"fmt"

	"github.com/altwalker/altwalker-go/internal/alog"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/reporter"
)

var _ reporter.Reporter = (*Reporter)(nil)

// Reporter writes one log line per lifecycle event via alog.Logger.
type Reporter struct {
	log alog.Logger
	ctx context.Context
}

// New constructs a plain Reporter. ctx is used only to carry the run's
// correlation ID into each log call.
func New(ctx context.Context, log alog.Logger) *Reporter {
	return &Reporter{log: log, ctx: ctx}
}

func (r *Reporter) Start(models *model.ModelSet, expression string) {
	count := 0
	if models != nil {
		count = len(models.Models)
	}
	r.log.Info(r.ctx, "run started", "models", count, "expression", expression)
}

func (r *Reporter) End(stats model.Statistics) {
	r.log.Info(r.ctx, "run finished",
		"steps", stats.Steps,
		"edgeCoverage", stats.EdgeCoverage,
		"vertexCoverage", stats.VertexCoverage,
	)
}

func (r *Reporter) StepStart(step model.Step) {
	r.log.Debug(r.ctx, "step starting", "model", step.ModelName, "name", step.Name)
}

func (r *Reporter) StepEnd(step model.Step, result model.StepOutcome) {
	switch result.Status {
	case model.StepFailed:
		r.log.Error(r.ctx, fmt.Sprintf("step failed: %s", step.Name), "model", step.ModelName, "message", result.Message)
	case model.StepSkipped:
		r.log.Warn(r.ctx, fmt.Sprintf("step skipped: %s", step.Name), "model", step.ModelName, "message", result.Message)
	default:
		r.log.Info(r.ctx, fmt.Sprintf("step passed: %s", step.Name), "model", step.ModelName)
	}
}

// Report returns nil; the plain reporter has no structured artifact, only
// the log stream itself.
func (r *Reporter) Report() any { return nil }
