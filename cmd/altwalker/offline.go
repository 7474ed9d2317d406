package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/executor"
	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/modelio"
	"github.com/altwalker/altwalker-go/internal/planner"
	"github.com/altwalker/altwalker-go/internal/reporter"
	"github.com/altwalker/altwalker-go/internal/walker"
)

// rejectedStopConditions names the generator stop conditions that cannot
// terminate on their own and so are meaningless for a one-shot path
// generation; offline rejects them as a usage error rather than hanging.
var rejectedStopConditions = []string{"never", "time_duration"}

func newOfflineCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var models []string
	var outPath string

	cmd := &cobra.Command{
		Use:   "offline",
		Short: "Generate a path against the generator without executing test code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _ := app.CommandContext(cmd, "offline")

			flags, err := parseModelFlags(models)
			if err != nil {
				return err
			}
			for _, f := range flags {
				if err := rejectUnboundedStopCondition(f.expression); err != nil {
					return err
				}
			}

			ms, expression, err := loadModelSet(ctx, flags)
			if err != nil {
				return err
			}

			genClient, err := generatorproc.Start(ctx, generatorproc.Options{Host: root.gwHost, Port: root.gwPort})
			if err != nil {
				return err
			}
			defer genClient.Close()
			if err := genClient.Load(ctx, ms, expression); err != nil {
				return err
			}

			p := planner.NewOnline(genClient, true, false)
			exec := executor.NewOffline()
			rep := reporter.NewReporting()

			w := walker.New(p, exec, rep, ms, expression)
			result, err := w.Run(ctx)
			if err != nil {
				return err
			}

			// Fixture invocations are synthesized and reported by the walker
			// itself on every run (online and offline alike), so they are
			// left out of the path file: walk's replay dispatches fixtures
			// itself and skips fixture-named entries of a path file.
			steps := make([]model.Step, 0, len(result.Outcomes))
			for _, o := range result.Outcomes {
				if o.Step.IsFixture() {
					continue
				}
				steps = append(steps, o.Step)
			}

			if outPath != "" {
				if err := modelio.WritePath(outPath, steps); err != nil {
					return err
				}
			} else {
				for _, o := range result.Outcomes {
					fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: %s\n", o.Step.ModelName, o.Step.Name, o.Status)
				}
			}

			if !result.Passed {
				cmd.SilenceUsage = true
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "model file as path:expression (repeatable)")
	cmd.Flags().StringVarP(&outPath, "output", "f", "", "write the generated path to this file instead of stdout")
	cmd.MarkFlagRequired("model") //nolint:errcheck

	return cmd
}

func rejectUnboundedStopCondition(expression string) error {
	for _, bad := range rejectedStopConditions {
		if strings.Contains(expression, bad) {
			return newUsageError(fmt.Errorf("offline: stop condition %q cannot terminate a one-shot path generation", bad))
		}
	}
	return nil
}
