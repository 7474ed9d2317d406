// Package walker implements the Walker state machine: the component that
// drives a run from Idle through RunSetup, ModelSetup, Step,
// ModelTeardown, and RunTeardown to Done, dispatching fixtures and model
// steps to the executor and pulling them from the planner.
package walker

import (
	"context"
	"time"

	"github.com/altwalker/altwalker-go/internal/executor"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/planner"
	"github.com/altwalker/altwalker-go/internal/reporter"
)

// TeardownTimeout bounds each fixture call issued during interrupt-driven
// or end-of-run teardown.
var TeardownTimeout = 10 * time.Second

// Walker drives a single run to completion. It owns its Planner and
// Executor for the run's lifetime; neither is shared with another Walker.
type Walker struct {
	planner  planner.Planner
	executor executor.Executor
	reporter reporter.Reporter

	models     *model.ModelSet
	expression string

	hasStepCache        map[cacheKey]bool
	currentModel        string
	currentModelSkipped bool
	failed              bool
	outcomes            []model.StepOutcome
}

type cacheKey struct {
	modelName string
	name      string
}

// New constructs a Walker. reporter may be nil, in which case calls are
// silently dropped (useful for verification-only runs).
func New(p planner.Planner, e executor.Executor, r reporter.Reporter, models *model.ModelSet, expression string) *Walker {
	if r == nil {
		r = reporter.NewReporting()
	}
	return &Walker{
		planner:      p,
		executor:     e,
		reporter:     r,
		models:       models,
		expression:   expression,
		hasStepCache: make(map[cacheKey]bool),
	}
}

// Run executes the full state machine and returns the final result. The
// returned error is always nil: step and fixture failures, executor errors
// (transport and protocol alike) and planner errors all mark the run as
// failed in the returned RunResult. An executor error fails only the
// current step and the walk goes on; a planner error ends the step loop,
// after which teardown runs as usual.
func (w *Walker) Run(ctx context.Context) (*model.RunResult, error) {
	w.reporter.Start(w.models, w.expression)

	w.runFixture(ctx, "", model.FixtureSetUpRun)

	interrupted := false
	if !w.failed {
		interrupted = w.stepLoop(ctx)
	}

	if w.currentModel != "" {
		modelCtx, cancelModel := context.WithTimeout(context.Background(), TeardownTimeout)
		w.runFixture(modelCtx, w.currentModel, model.FixtureTearDownModel)
		cancelModel()
		w.currentModel = ""
	}
	teardownCtx, cancel := context.WithTimeout(context.Background(), TeardownTimeout)
	defer cancel()
	w.runFixture(teardownCtx, "", model.FixtureTearDownRun)

	w.planner.Close()
	w.executor.Kill()

	stats, err := w.planner.GetStatistics(context.Background())
	if err != nil {
		stats = model.Statistics{}
	}
	stats.Steps = len(w.outcomes)

	result := &model.RunResult{
		Passed:      !w.failed,
		Interrupted: interrupted,
		Statistics:  stats,
		Outcomes:    w.outcomes,
	}
	w.reporter.End(stats)
	return result, nil
}

// stepLoop pulls steps from the planner until it is exhausted or the
// context is cancelled, returning whether it exited due to cancellation.
func (w *Walker) stepLoop(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		default:
		}

		has, err := w.planner.HasNext(ctx)
		if err != nil {
			w.failed = true
			return false
		}
		if !has {
			return false
		}

		step, err := w.planner.GetNext(ctx)
		if err != nil {
			w.failed = true
			return false
		}

		w.runStep(ctx, step)
	}
}

func (w *Walker) runStep(ctx context.Context, step model.Step) {
	// A fixture-named entry reaching here means it came from a planner
	// (typically a hand-authored or stale offline path file) rather than
	// from a real model walk; the walker already dispatches every fixture
	// itself at the right point in the lifecycle, so replaying one here
	// would run it a second time.
	if step.IsFixture() {
		return
	}

	if step.ModelName != w.currentModel {
		if w.currentModel != "" {
			w.runFixture(ctx, w.currentModel, model.FixtureTearDownModel)
		}
		w.currentModel = step.ModelName
		w.currentModelSkipped = !w.runFixture(ctx, w.currentModel, model.FixtureSetUpModel)
	}

	if w.currentModelSkipped {
		outcome := model.StepOutcome{Step: step, Status: model.StepSkipped, Message: "setUpModel failed"}
		w.reporter.StepStart(step)
		w.outcomes = append(w.outcomes, outcome)
		w.reporter.StepEnd(step, outcome)
		return
	}

	w.reporter.StepStart(step)

	beforeOK := w.runFixtureQuiet(ctx, "", model.FixtureBeforeStep)
	if beforeOK {
		beforeOK = w.runFixtureQuiet(ctx, w.currentModel, model.FixtureBeforeStep)
	}

	var outcome model.StepOutcome
	if !beforeOK {
		outcome = model.StepOutcome{Step: step, Status: model.StepSkipped, Message: "beforeStep failed"}
	} else {
		outcome = w.dispatchStep(ctx, step)
	}
	w.outcomes = append(w.outcomes, outcome)
	w.reporter.StepEnd(step, outcome)

	w.runFixtureQuiet(ctx, w.currentModel, model.FixtureAfterStep)
	w.runFixtureQuiet(ctx, "", model.FixtureAfterStep)
}

func (w *Walker) dispatchStep(ctx context.Context, step model.Step) model.StepOutcome {
	// An anonymous vertex/edge (name "") is never dispatched: the
	// generator still walks through it, but there is no method to look up.
	if step.Name == "" {
		return model.StepOutcome{Step: step, Status: model.StepPassed}
	}

	data, err := w.planner.GetData(ctx)
	if err != nil {
		data = nil
	}

	result, err := w.executor.ExecuteStep(ctx, step.ModelName, step.Name, data)
	if err != nil {
		w.failed = true
		_ = w.planner.Fail(ctx, err.Error())
		return model.StepOutcome{Step: step, Status: model.StepFailed, Message: err.Error()}
	}

	if result.Failed() {
		w.failed = true
		_ = w.planner.Fail(ctx, result.Error.Message)
		return model.StepOutcome{Step: step, Status: model.StepFailed, Message: result.Error.Message, Result: result}
	}

	for key, value := range result.Data {
		if old, ok := data[key]; !ok || old != value {
			_ = w.planner.SetData(ctx, key, value)
		}
	}

	return model.StepOutcome{Step: step, Status: model.StepPassed, Result: result}
}

// runFixture invokes an optional fixture if present, flags failure on
// error, and records/reports the outcome. Used for the run/model-level
// fixtures that are reported as their own steps. Returns false only when
// the fixture was present and failed; an absent fixture reports success.
func (w *Walker) runFixture(ctx context.Context, modelName, name string) bool {
	if !w.hasStep(ctx, modelName, name) {
		return true
	}

	step := model.Step{Name: name, ModelName: modelName}
	w.reporter.StepStart(step)

	result, err := w.executor.ExecuteStep(ctx, modelName, name, nil)
	outcome := model.StepOutcome{Step: step, Status: model.StepPassed}
	ok := true
	if err != nil {
		w.failed = true
		ok = false
		outcome.Status = model.StepFailed
		outcome.Message = err.Error()
	} else if result.Failed() {
		w.failed = true
		ok = false
		outcome.Status = model.StepFailed
		outcome.Message = result.Error.Message
		outcome.Result = result
	}

	w.outcomes = append(w.outcomes, outcome)
	w.reporter.StepEnd(step, outcome)
	return ok
}

// runFixtureQuiet invokes beforeStep/afterStep without emitting a separate
// reporter event (they are folded into the surrounding step's report) and
// returns whether the fixture succeeded (true if absent).
func (w *Walker) runFixtureQuiet(ctx context.Context, modelName, name string) bool {
	if !w.hasStep(ctx, modelName, name) {
		return true
	}
	result, err := w.executor.ExecuteStep(ctx, modelName, name, nil)
	if err != nil {
		w.failed = true
		return false
	}
	if result.Failed() {
		w.failed = true
		return false
	}
	return true
}

func (w *Walker) hasStep(ctx context.Context, modelName, name string) bool {
	key := cacheKey{modelName: modelName, name: name}
	if ok, cached := w.hasStepCache[key]; cached {
		return ok
	}
	has, err := w.executor.HasStep(ctx, modelName, name)
	if err != nil {
		has = false
	}
	w.hasStepCache[key] = has
	return has
}
