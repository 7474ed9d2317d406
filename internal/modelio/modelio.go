// Package modelio loads model-set files (JSON or GraphML, concatenating
// multiple files into one effective model set) and reads/writes the
// offline planner's path file format.
package modelio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
)

// Converter runs the generator's GraphML-to-JSON conversion. Implemented
// by generatorproc.Convert against the real generator subprocess.
type Converter func(ctx context.Context, graphmlPath string) ([]byte, error)

// LoadModelSets reads one or more model files (JSON or .graphml) and
// concatenates their models into a single ModelSet, in the order the
// paths were given. GraphML files are converted via convert first;
// convert may be nil if no .graphml path is present.
func LoadModelSets(ctx context.Context, paths []string, convert Converter) (*model.ModelSet, error) {
	combined := &model.ModelSet{}

	for _, path := range paths {
		raw, err := readModelFile(ctx, path, convert)
		if err != nil {
			return nil, err
		}

		var ms model.ModelSet
		if err := json.Unmarshal(raw, &ms); err != nil {
			return nil, fmt.Errorf("modelio: parse %q: %w", path, err)
		}
		combined.Models = append(combined.Models, ms.Models...)
	}

	return combined, nil
}

func readModelFile(ctx context.Context, path string, convert Converter) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".graphml") {
		if convert == nil {
			return nil, fmt.Errorf("modelio: %q is GraphML but no converter was supplied", path)
		}
		return convert(ctx, path)
	}
	return os.ReadFile(path)
}

// GraphWalkerConverter adapts generatorproc.Check's one-shot subprocess
// pattern to GraphML conversion, via the generator's "convert"
// subcommand.
func GraphWalkerConverter(opts generatorproc.CheckOptions) Converter {
	return func(ctx context.Context, graphmlPath string) ([]byte, error) {
		return generatorproc.Convert(ctx, graphmlPath, opts)
	}
}

// ReadPath loads an offline planner's input: a JSON array of Step values
// produced by a prior online run or hand-authored per the path file
// format.
func ReadPath(path string) ([]model.Step, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelio: read path file %q: %w", path, err)
	}
	var steps []model.Step
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("modelio: parse path file %q: %w", path, err)
	}
	return steps, nil
}

// WritePath writes steps to path in the canonical path file format,
// omitting modelName for fixture steps.
func WritePath(path string, steps []model.Step) error {
	raw, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return fmt.Errorf("modelio: encode path file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("modelio: write path file %q: %w", path, err)
	}
	return nil
}
