package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

func TestProgramUpdate_Start(t *testing.T) {
	p := &program{}

	updated, _ := p.Update(startMsg{modelCount: 2, expression: "reached_vertex(v_end)"})
	pr, ok := updated.(*program)
	require.True(t, ok)

	assert.Equal(t, 2, pr.modelCount)
	assert.Equal(t, "reached_vertex(v_end)", pr.expression)
}

func TestProgramUpdate_StepLifecycle(t *testing.T) {
	p := &program{}

	p.Update(stepStartMsg{step: model.Step{ModelName: "Login", Name: "v_start"}})
	require.NotNil(t, p.pending)
	assert.Equal(t, "v_start", p.pending.name)

	p.Update(stepEndMsg{
		step:   model.Step{ModelName: "Login", Name: "v_start"},
		result: model.StepOutcome{Status: model.StepPassed},
	})
	require.Nil(t, p.pending)
	require.Len(t, p.rows, 1)
	assert.Equal(t, model.StepPassed, p.rows[0].status)
}

func TestProgramUpdate_End(t *testing.T) {
	p := &program{}

	_, cmd := p.Update(endMsg{stats: model.Statistics{Steps: 3}})
	require.NotNil(t, cmd)
	assert.True(t, p.done)
	assert.Equal(t, 3, p.stats.Steps)
}

func TestProgramView_RendersRowsByStatus(t *testing.T) {
	p := &program{
		modelCount: 1,
		expression: "vertex_coverage(100)",
		rows: []row{
			{model: "Login", name: "v_start", status: model.StepPassed},
			{model: "Login", name: "e_fail", status: model.StepFailed, message: "boom"},
			{model: "Login", name: "v_skip", status: model.StepSkipped},
		},
	}

	out := p.View()
	assert.Contains(t, out, "Login.v_start")
	assert.Contains(t, out, "Login.e_fail")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Login.v_skip")
}

func TestRenderRow(t *testing.T) {
	passed := renderRow(row{model: "Login", name: "v_start", status: model.StepPassed})
	assert.Contains(t, passed, "Login.v_start")

	failed := renderRow(row{model: "Login", name: "e_fail", status: model.StepFailed, message: "boom"})
	assert.Contains(t, failed, "boom")
}
