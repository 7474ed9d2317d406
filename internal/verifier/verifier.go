// Package verifier implements CodeVerifier: it checks, for a loaded
// executor, that every model, vertex, and edge name in a model set has a
// corresponding dispatchable step.
package verifier

import (
	"context"
	"fmt"

	"github.com/altwalker/altwalker-go/internal/executor"
	"github.com/altwalker/altwalker-go/internal/model"
)

// Miss is a single model/vertex/edge the executor has no step for.
type Miss struct {
	ModelName   string
	ElementName string
	Kind        string // "model" | "vertex" | "edge"
}

// ModelReport groups the misses for one model, preserving declaration
// order for both the model and its elements.
type ModelReport struct {
	ModelName   string
	MissingModel bool
	Misses      []Miss
	Suggestions []string
}

// Report is the full verification result, one entry per model in
// declaration order.
type Report struct {
	Models []ModelReport
}

// OK reports whether every model and element resolved to a step.
func (r *Report) OK() bool {
	for _, m := range r.Models {
		if m.MissingModel || len(m.Misses) > 0 {
			return false
		}
	}
	return true
}

// Suggester produces a language-specific code stub for a missing method;
// registered per target language in suggest_<lang>.go. verifier.Verify
// calls it only when a language was explicitly requested.
type Suggester func(modelName, elementName, kind string) string

// Verify queries exec for every model and every vertex/edge name in ms,
// collecting misses grouped by model in declaration order. When suggest
// is non-nil, a code suggestion is attached to each miss's model report.
func Verify(ctx context.Context, exec executor.Executor, ms *model.ModelSet, suggest Suggester) (*Report, error) {
	report := &Report{}
	if ms == nil {
		return report, nil
	}

	for _, m := range ms.Models {
		mr := ModelReport{ModelName: m.Name}

		hasModel, err := exec.HasModel(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		if !hasModel {
			mr.MissingModel = true
		}

		for _, v := range m.Vertices {
			if v.IsAnonymous() {
				continue
			}
			has, err := exec.HasStep(ctx, m.Name, v.Name)
			if err != nil {
				return nil, err
			}
			if !has {
				mr.Misses = append(mr.Misses, Miss{ModelName: m.Name, ElementName: v.Name, Kind: "vertex"})
			}
		}

		for _, e := range m.Edges {
			if e.IsAnonymous() {
				continue
			}
			has, err := exec.HasStep(ctx, m.Name, e.Name)
			if err != nil {
				return nil, err
			}
			if !has {
				mr.Misses = append(mr.Misses, Miss{ModelName: m.Name, ElementName: e.Name, Kind: "edge"})
			}
		}

		if suggest != nil {
			for _, miss := range mr.Misses {
				mr.Suggestions = append(mr.Suggestions, suggest(miss.ModelName, miss.ElementName, miss.Kind))
			}
		}

		report.Models = append(report.Models, mr)
	}

	return report, nil
}

// String renders a human-readable summary, one line per miss.
func (r *Report) String() string {
	out := ""
	for _, m := range r.Models {
		if m.MissingModel {
			out += fmt.Sprintf("model %q: no matching class found\n", m.ModelName)
		}
		for _, miss := range m.Misses {
			out += fmt.Sprintf("model %q: missing %s %q\n", m.ModelName, miss.Kind, miss.ElementName)
		}
	}
	return out
}
