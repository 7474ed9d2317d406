package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

var (
	_ Planner = (*OnlinePlanner)(nil)
	_ Planner = (*OfflinePlanner)(nil)
)

func TestOfflinePlannerWalksSequenceInOrder(t *testing.T) {
	steps := []model.Step{
		{ID: "v1", Name: "v_start", ModelName: "Login"},
		{ID: "e1", Name: "e_submit", ModelName: "Login"},
	}
	p := NewOffline(steps)
	ctx := context.Background()

	has, err := p.HasNext(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	s, err := p.GetNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v_start", s.Name)

	s, err = p.GetNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "e_submit", s.Name)

	has, err = p.HasNext(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestOfflinePlannerFailRecordsLastServedStep(t *testing.T) {
	steps := []model.Step{{ID: "v1", Name: "v_start", ModelName: "Login"}}
	p := NewOffline(steps)
	ctx := context.Background()

	_, err := p.GetNext(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Fail(ctx, "assertion failed"))

	stats, err := p.GetStatistics(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats.FailedStep)
	assert.Equal(t, "v_start", stats.FailedStep.Name)
	assert.Equal(t, 1, stats.Steps)
}

func TestOfflinePlannerRestartResetsCursor(t *testing.T) {
	steps := []model.Step{{Name: "v_start"}, {Name: "v_end"}}
	p := NewOffline(steps)
	ctx := context.Background()

	_, _ = p.GetNext(ctx)
	_, _ = p.GetNext(ctx)
	require.NoError(t, p.Fail(ctx, "boom"))
	require.NoError(t, p.Restart(ctx))

	has, err := p.HasNext(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	stats, err := p.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats.FailedStep)
	assert.Equal(t, 0, stats.Steps)
}

func TestOfflinePlannerDataOperationsAreInert(t *testing.T) {
	p := NewOffline(nil)
	ctx := context.Background()

	data, err := p.GetData(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, p.SetData(ctx, "key", "value"))
	p.Close()
}
