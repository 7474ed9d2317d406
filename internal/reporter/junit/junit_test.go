package junit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

func TestReportCountsFailuresAndSkips(t *testing.T) {
	r := New("Login")
	r.Start(&model.ModelSet{}, "")
	r.StepEnd(model.Step{Name: "v_a", ModelName: "Login"}, model.StepOutcome{Status: model.StepPassed})
	r.StepEnd(model.Step{Name: "v_b", ModelName: "Login"}, model.StepOutcome{Status: model.StepFailed, Message: "boom"})
	r.StepEnd(model.Step{Name: "v_c", ModelName: "Login"}, model.StepOutcome{Status: model.StepSkipped})

	suite, ok := r.Report().(Suite)
	require.True(t, ok)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Skipped)
	require.Len(t, suite.TestCases, 3)
	assert.Equal(t, "boom", suite.TestCases[1].Failure.Message)
}
