package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altwalker/altwalker-go/internal/model"
)

func validModelJSON() []byte {
	return []byte(`{
		"models": [
			{
				"id": "m1",
				"name": "Login",
				"startElementId": "v1",
				"vertices": [
					{"id": "v1", "name": "v_start"},
					{"id": "v2", "name": "v_done"}
				],
				"edges": [
					{"id": "e1", "name": "e_submit", "sourceVertexId": "v1", "targetVertexId": "v2"}
				]
			}
		]
	}`)
}

func TestValidateSchemaAcceptsWellFormedModel(t *testing.T) {
	report, err := ValidateSchema(validModelJSON())
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestValidateSchemaRejectsUnknownTopLevelKey(t *testing.T) {
	raw := []byte(`{"models": [], "bogus": true}`)
	report, err := ValidateSchema(raw)
	require.NoError(t, err)
	assert.False(t, report.OK())
}

func TestValidateSchemaRejectsMissingRequiredFields(t *testing.T) {
	raw := []byte(`{"models": [{"vertices": []}]}`)
	report, err := ValidateSchema(raw)
	require.NoError(t, err)
	assert.False(t, report.OK())
}

func TestValidateSemanticsDetectsDuplicateIDs(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{
			ID:   "m1",
			Name: "A",
			Vertices: []model.Vertex{
				{ID: "v1", Name: "v_a"},
				{ID: "v1", Name: "v_b"},
			},
		},
	}}
	report, err := ValidateSemantics(ms)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Error(), "duplicate id")
}

func TestValidateSemanticsDetectsUnresolvedEdgeEndpoints(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{
			ID:   "m1",
			Name: "A",
			Vertices: []model.Vertex{
				{ID: "v1", Name: "v_a"},
			},
			Edges: []model.Edge{
				{ID: "e1", Name: "e_go", SourceVertexID: "v1", TargetVertexID: "v_missing"},
			},
		},
	}}
	report, err := ValidateSemantics(ms)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Error(), "does not resolve")
}

func TestValidateSemanticsRejectsReservedWordNames(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{
			ID:   "m1",
			Name: "A",
			Vertices: []model.Vertex{
				{ID: "v1", Name: "class"},
			},
		},
	}}
	report, err := ValidateSemantics(ms)
	require.NoError(t, err)
	assert.False(t, report.OK())
}

func TestValidateSemanticsRejectsMalformedActions(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{
			ID:   "m1",
			Name: "A",
			Vertices: []model.Vertex{
				{ID: "v1", Name: "v_a"},
			},
			Edges: []model.Edge{
				{ID: "e1", Name: "e_go", SourceVertexID: "v1", TargetVertexID: "v1", Actions: []string{"x = 1"}},
			},
		},
	}}
	report, err := ValidateSemantics(ms)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Error(), "must end with ';'")
}

func TestValidateSemanticsRejectsUnresolvedStartElement(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{
			ID:             "m1",
			Name:           "A",
			StartElementID: "nope",
			Vertices: []model.Vertex{
				{ID: "v1", Name: "v_a"},
			},
		},
	}}
	report, err := ValidateSemantics(ms)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Error(), "startElementId")
}

type fakeChecker struct {
	diagnostics []string
	err         error
}

func (f fakeChecker) Check(ctx context.Context, ms *model.ModelSet, expression string) ([]string, error) {
	return f.diagnostics, f.err
}

func TestCheckModelsMergesGeneratorDiagnostics(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{ID: "m1", Name: "A", Vertices: []model.Vertex{{ID: "v1", Name: "v_a"}}},
	}}

	report, err := CheckModels(context.Background(), ms, "random(never)", fakeChecker{diagnostics: []string{"vertex v1 is unreachable"}})
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Error(), "unreachable")
}

func TestCheckModelsWithoutCheckerOnlyRunsSemantics(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{ID: "m1", Name: "A", Vertices: []model.Vertex{{ID: "v1", Name: "v_a"}}},
	}}

	report, err := CheckModels(context.Background(), ms, "", nil)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestCheckModelsPropagatesCheckerError(t *testing.T) {
	ms := &model.ModelSet{Models: []model.Model{
		{ID: "m1", Name: "A", Vertices: []model.Vertex{{ID: "v1", Name: "v_a"}}},
	}}

	_, err := CheckModels(context.Background(), ms, "", fakeChecker{err: errors.New("generator unavailable")})
	require.Error(t, err)
}
