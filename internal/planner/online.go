package planner

import (
	"context"

	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
)

// OnlinePlanner delegates every operation to a running generator
// subprocess via its REST client.
type OnlinePlanner struct {
	client    *generatorproc.Client
	verbose   bool
	unvisited bool
}

// NewOnline wraps an already-started generator client as a Planner.
// verbose requests the richer getNext step payload; unvisited asks getNext
// to include the list of elements not yet visited in each step.
func NewOnline(client *generatorproc.Client, verbose, unvisited bool) *OnlinePlanner {
	return &OnlinePlanner{client: client, verbose: verbose, unvisited: unvisited}
}

func (p *OnlinePlanner) HasNext(ctx context.Context) (bool, error) {
	return p.client.HasNext(ctx)
}

func (p *OnlinePlanner) GetNext(ctx context.Context) (model.Step, error) {
	return p.client.GetNext(ctx, p.verbose, p.unvisited)
}

func (p *OnlinePlanner) GetData(ctx context.Context) (map[string]string, error) {
	return p.client.GetData(ctx)
}

func (p *OnlinePlanner) SetData(ctx context.Context, key string, value any) error {
	return p.client.SetData(ctx, key, value)
}

func (p *OnlinePlanner) Restart(ctx context.Context) error {
	return p.client.Restart(ctx)
}

func (p *OnlinePlanner) Fail(ctx context.Context, message string) error {
	return p.client.Fail(ctx, message)
}

func (p *OnlinePlanner) GetStatistics(ctx context.Context) (model.Statistics, error) {
	return p.client.GetStatistics(ctx)
}

func (p *OnlinePlanner) Close() {
	p.client.Close()
}
