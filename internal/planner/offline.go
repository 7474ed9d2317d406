package planner

import (
	"context"

	"github.com/altwalker/altwalker-go/internal/model"
)

// OfflinePlanner replays a fixed, pre-computed sequence of steps. Data
// operations are inert; Fail records the most recently served step as the
// statistics' failed step, and Restart rewinds the cursor to the first
// step and clears that failed step.
type OfflinePlanner struct {
	steps      []model.Step
	index      int
	failedStep *model.Step
}

// NewOffline constructs an OfflinePlanner over a finite step sequence.
func NewOffline(steps []model.Step) *OfflinePlanner {
	return &OfflinePlanner{steps: steps}
}

func (p *OfflinePlanner) HasNext(ctx context.Context) (bool, error) {
	return p.index < len(p.steps), nil
}

func (p *OfflinePlanner) GetNext(ctx context.Context) (model.Step, error) {
	if p.index >= len(p.steps) {
		return model.Step{}, nil
	}
	s := p.steps[p.index]
	p.index++
	return s, nil
}

func (p *OfflinePlanner) GetData(ctx context.Context) (map[string]string, error) {
	return nil, nil
}

func (p *OfflinePlanner) SetData(ctx context.Context, key string, value any) error {
	return nil
}

func (p *OfflinePlanner) Restart(ctx context.Context) error {
	p.index = 0
	p.failedStep = nil
	return nil
}

// Fail records the most recently served step as failed for reporting
// purposes; there is no generator to notify.
func (p *OfflinePlanner) Fail(ctx context.Context, message string) error {
	if p.index > 0 {
		s := p.steps[p.index-1]
		p.failedStep = &s
	}
	return nil
}

func (p *OfflinePlanner) GetStatistics(ctx context.Context) (model.Statistics, error) {
	return model.Statistics{Steps: p.index, FailedStep: p.failedStep}, nil
}

func (p *OfflinePlanner) Close() {}
