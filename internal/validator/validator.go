// Package validator implements the ModelValidator component: structural
// validation plus the semantic invariants of the data model. Structural
// validation uses typed structs carrying
// github.com/go-playground/validator/v10 struct tags rather than a
// standalone schema-description language.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/altwalker/altwalker-go/internal/model"
)

// Violation is a single validation failure, tagged with the offending
// element's id for machine consumption.
type Violation struct {
	ElementID string
	Message   string
}

func (v Violation) String() string {
	if v.ElementID == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.ElementID, v.Message)
}

// Report aggregates every violation found during a validation pass. All
// violations are collected; validation never fails fast.
type Report struct {
	Violations []Violation
}

// OK reports whether the report contains no violations.
func (r *Report) OK() bool { return r == nil || len(r.Violations) == 0 }

// Error renders the report as a single error, or nil when OK.
func (r *Report) Error() string {
	if r.OK() {
		return ""
	}
	lines := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

func (r *Report) add(elementID, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{ElementID: elementID, Message: fmt.Sprintf(format, args...)})
}

var structValidator = validator.New()

// schemaModelSet mirrors model.ModelSet with struct tags enforcing the
// required-field and type shape of the JSON schema §3 describes. Unknown
// per-element keys are accepted (forward compatibility with the
// generator); unknown top-level keys are rejected by ValidateSchema, which
// checks the top-level key set before decoding into these structs.
type schemaModelSet struct {
	Models []schemaModel `json:"models" validate:"required,min=1,dive"`
}

type schemaModel struct {
	ID             string        `json:"id" validate:"required"`
	Name           string        `json:"name" validate:"required"`
	GeneratorExpr  string        `json:"generator,omitempty"`
	StartElementID string        `json:"startElementId,omitempty"`
	Actions        []string      `json:"actions,omitempty"`
	Vertices       []schemaVertex `json:"vertices" validate:"required,dive"`
	Edges          []schemaEdge   `json:"edges" validate:"dive"`
}

type schemaVertex struct {
	ID           string            `json:"id" validate:"required"`
	Name         string            `json:"name"`
	SharedState  string            `json:"sharedState,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
	Requirements []string          `json:"requirements,omitempty"`
	Blocked      bool              `json:"blocked,omitempty"`
}

type schemaEdge struct {
	ID             string   `json:"id" validate:"required"`
	Name           string   `json:"name"`
	SourceVertexID string   `json:"sourceVertexId" validate:"required"`
	TargetVertexID string   `json:"targetVertexId" validate:"required"`
	Guard          string   `json:"guard,omitempty"`
	Actions        []string `json:"actions,omitempty"`
	Weight         float64  `json:"weight,omitempty"`
	Dependency     int      `json:"dependency,omitempty"`
}

// ValidateSchema performs structural validation of raw model-file JSON:
// required fields, field types, and rejection of unknown top-level keys.
func ValidateSchema(raw []byte) (*Report, error) {
	report := &Report{}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		report.add("", "schema decode error: %v", err)
		return report, nil
	}
	for key := range top {
		if key != "models" {
			report.add("", "schema decode error: unknown top-level key %q", key)
		}
	}

	var parsed schemaModelSet
	if err := json.Unmarshal(raw, &parsed); err != nil {
		report.add("", "schema decode error: %v", err)
		return report, nil
	}

	if err := structValidator.Struct(parsed); err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ves {
				report.add("", "%s failed validation for tag %q", fieldPath(fe), fe.Tag())
			}
		} else {
			report.add("", "schema validation error: %v", err)
		}
	}

	return report, nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}

// ValidateSemantics enforces the data-model invariants: id uniqueness
// across the whole model set, edge endpoint resolution within a model,
// identifier-grammar/reserved-word checks on every name, startElementId
// resolution, and well-formed action strings. Violations are collected
// in (model index, element index) order.
func ValidateSemantics(ms *model.ModelSet) (*Report, error) {
	report := &Report{}
	if ms == nil || len(ms.Models) == 0 {
		report.add("", "model set is empty")
		return report, nil
	}

	seenIDs := map[string]string{} // id -> where first seen

	checkID := func(id, where string) {
		if id == "" {
			report.add(where, "id must not be empty")
			return
		}
		if prev, exists := seenIDs[id]; exists {
			report.add(id, "duplicate id (first seen at %s, again at %s)", prev, where)
			return
		}
		seenIDs[id] = where
	}

	checkName := func(name, elementID string) {
		if name == "" {
			return // anonymous vertices/edges are permitted
		}
		if !IsIdentifier(name) {
			report.add(elementID, "name %q is not a valid identifier or is a reserved word", name)
		}
	}

	checkActions := func(actions []string, elementID string) {
		for i, a := range actions {
			if !strings.HasSuffix(strings.TrimSpace(a), ";") {
				report.add(elementID, "action[%d] %q must end with ';'", i, a)
			}
		}
	}

	for mi, m := range ms.Models {
		modelWhere := fmt.Sprintf("models[%d]", mi)
		checkID(m.ID, modelWhere)
		checkName(m.Name, m.ID)
		checkActions(m.Actions, m.ID)

		vertexByID := make(map[string]struct{}, len(m.Vertices))
		for vi, v := range m.Vertices {
			where := fmt.Sprintf("%s.vertices[%d]", modelWhere, vi)
			checkID(v.ID, where)
			checkName(v.Name, v.ID)
			vertexByID[v.ID] = struct{}{}
		}

		for ei, e := range m.Edges {
			where := fmt.Sprintf("%s.edges[%d]", modelWhere, ei)
			checkID(e.ID, where)
			checkName(e.Name, e.ID)
			checkActions(e.Actions, e.ID)

			if e.SourceVertexID == "" {
				report.add(e.ID, "sourceVertexId is required")
			} else if _, ok := vertexByID[e.SourceVertexID]; !ok {
				report.add(e.ID, "sourceVertexId %q does not resolve within model %q", e.SourceVertexID, m.ID)
			}

			if e.TargetVertexID == "" {
				report.add(e.ID, "targetVertexId is required")
			} else if _, ok := vertexByID[e.TargetVertexID]; !ok {
				report.add(e.ID, "targetVertexId %q does not resolve within model %q", e.TargetVertexID, m.ID)
			}
		}

		if m.StartElementID != "" {
			if _, ok := vertexByID[m.StartElementID]; !ok {
				found := false
				for _, e := range m.Edges {
					if e.ID == m.StartElementID {
						found = true
						break
					}
				}
				if !found {
					report.add(m.ID, "startElementId %q does not exist in model", m.StartElementID)
				}
			}
		}
	}

	return report, nil
}

// ModelChecker runs a model set and generator expression through an
// external path generator's own validation, returning one diagnostic
// string per issue it finds. internal/generatorproc.Check implements
// this against the real generator subprocess; tests supply a fake.
type ModelChecker interface {
	Check(ctx context.Context, ms *model.ModelSet, expression string) ([]string, error)
}

// CheckModels composes ValidateSemantics with an external checker's
// generator-specific diagnostics (e.g. unreachable vertices, generator
// expressions the path algorithm cannot parse). checker may be nil, in
// which case only the semantic invariants are checked.
func CheckModels(ctx context.Context, ms *model.ModelSet, expression string, checker ModelChecker) (*Report, error) {
	report, err := ValidateSemantics(ms)
	if err != nil {
		return report, err
	}

	if checker == nil {
		return report, nil
	}

	diagnostics, err := checker.Check(ctx, ms, expression)
	if err != nil {
		return report, err
	}
	for _, d := range diagnostics {
		if strings.TrimSpace(d) != "" {
			report.add("", "%s", d)
		}
	}

	return report, nil
}
