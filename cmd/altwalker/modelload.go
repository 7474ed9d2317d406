package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/altwalker/altwalker-go/internal/altwalkererrors"
	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/modelio"
)

// modelFlag is one -m/--model occurrence: a model file path and the
// generator expression ("stop condition") that applies to every model it
// contains, given as "path:expression".
type modelFlag struct {
	path       string
	expression string
}

func parseModelFlags(raw []string) ([]modelFlag, error) {
	flags := make([]modelFlag, 0, len(raw))
	for _, r := range raw {
		path, expr, ok := strings.Cut(r, ":")
		if !ok || path == "" || expr == "" {
			return nil, newUsageError(fmt.Errorf("invalid -m value %q, expected path:expression", r))
		}
		flags = append(flags, modelFlag{path: path, expression: expr})
	}
	return flags, nil
}

// loadModelSet loads every model file named in flags, concatenates them,
// and stamps each model's GeneratorExpr from its flag's expression when
// the file did not already set one. Exactly one of the collection-level
// (-m path:expression) or element-level (the model's own "generator"
// field) expression may be resolvable per model; a model setting both is
// ambiguous and rejected rather than silently resolved in the flag's
// favor.
func loadModelSet(ctx context.Context, flags []modelFlag) (*model.ModelSet, string, error) {
	if len(flags) == 0 {
		return nil, "", newUsageError(fmt.Errorf("at least one -m/--model flag is required"))
	}

	combined := &model.ModelSet{}
	expression := flags[0].expression

	for _, f := range flags {
		ms, err := modelio.LoadModelSets(ctx, []string{f.path}, modelio.GraphWalkerConverter(generatorproc.CheckOptions{}))
		if err != nil {
			return nil, "", err
		}
		for i := range ms.Models {
			switch {
			case ms.Models[i].GeneratorExpr != "" && f.expression != "":
				return nil, "", altwalkererrors.New(altwalkererrors.KindValidation, "modelload.loadModelSet",
					fmt.Sprintf("model %q: both a collection-level -m expression (%q) and an element-level generator expression (%q) are set; exactly one must be resolvable", ms.Models[i].Name, f.expression, ms.Models[i].GeneratorExpr))
			case ms.Models[i].GeneratorExpr == "" && f.expression == "":
				return nil, "", altwalkererrors.New(altwalkererrors.KindValidation, "modelload.loadModelSet",
					fmt.Sprintf("model %q: no generator expression is resolvable", ms.Models[i].Name))
			case ms.Models[i].GeneratorExpr == "":
				ms.Models[i].GeneratorExpr = f.expression
			}
		}
		combined.Models = append(combined.Models, ms.Models...)
	}

	return combined, expression, nil
}
