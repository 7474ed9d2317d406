package walker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

type fakePlanner struct {
	steps      []model.Step
	index      int
	data       map[string]string
	setData    map[string]any
	failedMsgs []string
	restarted  bool
	closed     bool
}

func (p *fakePlanner) HasNext(ctx context.Context) (bool, error) { return p.index < len(p.steps), nil }

func (p *fakePlanner) GetNext(ctx context.Context) (model.Step, error) {
	s := p.steps[p.index]
	p.index++
	return s, nil
}

func (p *fakePlanner) GetData(ctx context.Context) (map[string]string, error) { return p.data, nil }

func (p *fakePlanner) SetData(ctx context.Context, key string, value any) error {
	if p.setData == nil {
		p.setData = map[string]any{}
	}
	p.setData[key] = value
	return nil
}

func (p *fakePlanner) Restart(ctx context.Context) error { p.restarted = true; return nil }

func (p *fakePlanner) Fail(ctx context.Context, message string) error {
	p.failedMsgs = append(p.failedMsgs, message)
	return nil
}

func (p *fakePlanner) GetStatistics(ctx context.Context) (model.Statistics, error) {
	return model.Statistics{}, nil
}

func (p *fakePlanner) Close() { p.closed = true }

type fakeExecutor struct {
	steps     map[string]bool // "model|name" -> has
	fail      map[string]string
	data      map[string]map[string]string
	killed    bool
	reset     bool
	dispatched []string
}

func key(modelName, name string) string { return modelName + "|" + name }

func (e *fakeExecutor) HasModel(ctx context.Context, name string) (bool, error) { return true, nil }

func (e *fakeExecutor) HasStep(ctx context.Context, modelName, name string) (bool, error) {
	return e.steps[key(modelName, name)], nil
}

func (e *fakeExecutor) ExecuteStep(ctx context.Context, modelName, name string, data map[string]string) (*model.ExecutionResult, error) {
	e.dispatched = append(e.dispatched, key(modelName, name))
	if msg, ok := e.fail[key(modelName, name)]; ok {
		return &model.ExecutionResult{Error: &model.StepError{Message: msg}}, nil
	}
	overrides := e.data[key(modelName, name)]
	return &model.ExecutionResult{Output: "ok", Data: overrides}, nil
}

func (e *fakeExecutor) Reset(ctx context.Context) error { e.reset = true; return nil }

func (e *fakeExecutor) Kill() { e.killed = true }

type fakeReporter struct {
	starts    int
	ends      int
	stepStart []model.Step
	stepEnd   []model.StepOutcome
}

func (r *fakeReporter) Start(models *model.ModelSet, expression string) { r.starts++ }
func (r *fakeReporter) End(stats model.Statistics)                     { r.ends++ }
func (r *fakeReporter) StepStart(step model.Step)                      { r.stepStart = append(r.stepStart, step) }
func (r *fakeReporter) StepEnd(step model.Step, result model.StepOutcome) {
	r.stepEnd = append(r.stepEnd, result)
}
func (r *fakeReporter) Report() any { return nil }

func TestWalkerRunsStepsInOrderAndPasses(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{
		{ID: "v1", Name: "v_start", ModelName: "Login"},
		{ID: "e1", Name: "e_submit", ModelName: "Login"},
	}}
	e := &fakeExecutor{steps: map[string]bool{}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "random(never)")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.False(t, result.Interrupted)
	assert.Equal(t, 1, r.starts)
	assert.Equal(t, 1, r.ends)
	assert.True(t, e.killed)
	assert.True(t, p.closed)
	assert.Contains(t, e.dispatched, "Login|v_start")
	assert.Contains(t, e.dispatched, "Login|e_submit")
}

func TestWalkerRunsFixturesWhenPresent(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{{Name: "v_start", ModelName: "Login"}}}
	e := &fakeExecutor{steps: map[string]bool{
		key("", "setUpRun"):          true,
		key("", "tearDownRun"):       true,
		key("Login", "setUpModel"):    true,
		key("Login", "tearDownModel"): true,
		key("", "beforeStep"):        true,
		key("", "afterStep"):         true,
	}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Passed)

	assert.Contains(t, e.dispatched, "|setUpRun")
	assert.Contains(t, e.dispatched, "Login|setUpModel")
	assert.Contains(t, e.dispatched, "|beforeStep")
	assert.Contains(t, e.dispatched, "|afterStep")
	assert.Contains(t, e.dispatched, "Login|tearDownModel")
	assert.Contains(t, e.dispatched, "|tearDownRun")
}

func TestWalkerFlagsFailureOnStepError(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{{Name: "v_start", ModelName: "Login"}}}
	e := &fakeExecutor{
		steps: map[string]bool{},
		fail:  map[string]string{"Login|v_start": "assertion failed"},
	}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	require.Len(t, p.failedMsgs, 1)
	assert.Equal(t, "assertion failed", p.failedMsgs[0])
}

func TestWalkerSetUpModelFailureSkipsModelSteps(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{
		{Name: "v_a", ModelName: "Login"},
		{Name: "v_b", ModelName: "Login"},
	}}
	e := &fakeExecutor{
		steps: map[string]bool{key("Login", "setUpModel"): true},
		fail:  map[string]string{"Login|setUpModel": "setup broke"},
	}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.NotContains(t, e.dispatched, "Login|v_a")
	assert.NotContains(t, e.dispatched, "Login|v_b")
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, model.StepFailed, result.Outcomes[0].Status) // setUpModel itself
	assert.Equal(t, model.StepSkipped, result.Outcomes[1].Status)
	assert.Equal(t, model.StepSkipped, result.Outcomes[2].Status)
}

func TestWalkerBeforeStepFailureSkipsStepButRunsAfterStep(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{{Name: "v_a", ModelName: "Login"}}}
	e := &fakeExecutor{
		steps: map[string]bool{
			key("", "beforeStep"): true,
			key("", "afterStep"):  true,
		},
		fail: map[string]string{"|beforeStep": "before broke"},
	}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.NotContains(t, e.dispatched, "Login|v_a")
	assert.Contains(t, e.dispatched, "|afterStep")
}

func TestWalkerPropagatesStepDataToPlannerSetData(t *testing.T) {
	p := &fakePlanner{
		steps: []model.Step{{Name: "v_a", ModelName: "Login"}},
		data:  map[string]string{"count": "0"},
	}
	e := &fakeExecutor{
		steps: map[string]bool{},
		data:  map[string]map[string]string{"Login|v_a": {"count": "1"}},
	}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	_, err := w.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, p.setData)
	assert.Equal(t, "1", p.setData["count"])
}

func TestWalkerHandlesInterruptionDuringStepLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePlanner{steps: []model.Step{{Name: "v_a", ModelName: "Login"}}}
	e := &fakeExecutor{steps: map[string]bool{}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Interrupted)
	assert.Empty(t, e.dispatched)
}

func TestWalkerReportsStepStartThenStepEndInOrder(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{{Name: "v_a", ModelName: "Login"}, {Name: "v_b", ModelName: "Login"}}}
	e := &fakeExecutor{steps: map[string]bool{}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	_, err := w.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, r.stepStart, 2)
	require.Len(t, r.stepEnd, 2)
	assert.Equal(t, "v_a", r.stepStart[0].Name)
	assert.Equal(t, "v_b", r.stepStart[1].Name)
}

func TestWalkerDoesNotDispatchAnonymousStep(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{
		{Name: "", ModelName: "Login"},
		{Name: "v_b", ModelName: "Login"},
	}}
	e := &fakeExecutor{steps: map[string]bool{}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.NotContains(t, e.dispatched, "Login|")
	assert.Contains(t, e.dispatched, "Login|v_b")
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, model.StepPassed, result.Outcomes[0].Status)
}

func TestWalkerIgnoresFixtureNamedPlannerStep(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{
		{Name: "setUpModel", ModelName: "Login"},
		{Name: "v_a", ModelName: "Login"},
	}}
	e := &fakeExecutor{steps: map[string]bool{}}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.NotContains(t, e.dispatched, "Login|setUpModel")
	assert.Contains(t, e.dispatched, "Login|v_a")
	require.Len(t, result.Outcomes, 1)
}

func TestWalkerTransportErrorFailsStepAndCallsFail(t *testing.T) {
	p := &fakePlanner{steps: []model.Step{{Name: "v_a", ModelName: "Login"}}}
	e := &erroringExecutor{err: errors.New("connection refused")}
	r := &fakeReporter{}

	w := New(p, e, r, &model.ModelSet{}, "")
	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	require.Len(t, p.failedMsgs, 1)
}

type erroringExecutor struct{ err error }

func (e *erroringExecutor) HasModel(ctx context.Context, name string) (bool, error) { return true, nil }
func (e *erroringExecutor) HasStep(ctx context.Context, modelName, name string) (bool, error) {
	return false, nil
}
func (e *erroringExecutor) ExecuteStep(ctx context.Context, modelName, name string, data map[string]string) (*model.ExecutionResult, error) {
	return nil, e.err
}
func (e *erroringExecutor) Reset(ctx context.Context) error { return nil }
func (e *erroringExecutor) Kill()                           {}
