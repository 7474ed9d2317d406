package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

func TestReporterWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Start(&model.ModelSet{Models: []model.Model{{Name: "Login"}}}, "random(never)")
	r.StepStart(model.Step{Name: "v_start", ModelName: "Login"})
	r.StepEnd(model.Step{Name: "v_start", ModelName: "Login"}, model.StepOutcome{Status: model.StepPassed})
	r.End(model.Statistics{Steps: 1})

	lines := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		lines++
	}
	assert.Equal(t, 4, lines)
}

func TestReportReturnsAccumulatedEvents(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.StepEnd(model.Step{Name: "v_start"}, model.StepOutcome{Status: model.StepFailed, Message: "boom"})

	events, ok := r.Report().([]Event)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "boom", events[0].Message)
}
