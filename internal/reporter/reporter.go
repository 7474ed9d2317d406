// Package reporter defines the Reporter protocol the walker drives and a
// fan-out aggregate composing multiple concrete reporters. Concrete
// implementations live in subpackages (plain, jsonl, junit, live).
package reporter

import (
	"github.com/altwalker/altwalker-go/internal/model"
)

// Reporter receives walker lifecycle events. All methods are total and
// side-effect only; implementations must not mutate the step or result
// passed to them.
type Reporter interface {
	Start(models *model.ModelSet, expression string)
	End(stats model.Statistics)
	StepStart(step model.Step)
	StepEnd(step model.Step, result model.StepOutcome)
	Report() any
}

// Reporting fans every call out to a set of reporters in registration
// order. It is itself a Reporter, so the walker holds exactly one.
type Reporting struct {
	reporters []Reporter
}

// NewReporting composes the given reporters into one fan-out Reporter.
func NewReporting(reporters ...Reporter) *Reporting {
	return &Reporting{reporters: reporters}
}

func (r *Reporting) Start(models *model.ModelSet, expression string) {
	for _, rep := range r.reporters {
		rep.Start(models, expression)
	}
}

func (r *Reporting) End(stats model.Statistics) {
	for _, rep := range r.reporters {
		rep.End(stats)
	}
}

func (r *Reporting) StepStart(step model.Step) {
	for _, rep := range r.reporters {
		rep.StepStart(step)
	}
}

func (r *Reporting) StepEnd(step model.Step, result model.StepOutcome) {
	for _, rep := range r.reporters {
		rep.StepEnd(step, result)
	}
}

// Report returns one report per composed reporter, in registration order.
func (r *Reporting) Report() any {
	reports := make([]any, len(r.reporters))
	for i, rep := range r.reporters {
		reports[i] = rep.Report()
	}
	return reports
}
