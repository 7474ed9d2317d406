package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/altwalkerconfig"
	"github.com/altwalker/altwalker-go/internal/modelio"
	"github.com/altwalker/altwalker-go/internal/planner"
	"github.com/altwalker/altwalker-go/internal/reporter"
	"github.com/altwalker/altwalker-go/internal/reporter/plain"
	"github.com/altwalker/altwalker-go/internal/walker"
)

func newWalkCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var execKind string
	var execURL string

	cmd := &cobra.Command{
		Use:   "walk <tests> <steps>",
		Short: "Replay a previously generated path against test code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			testsPath, stepsPath := args[0], args[1]
			ctx, log := app.CommandContext(cmd, "walk")

			steps, err := modelio.ReadPath(stepsPath)
			if err != nil {
				return err
			}

			cfg := altwalkerconfig.Merge(root.config, altwalkerconfig.Config{Executor: execKind, URL: execURL})

			exec, err := newExecutorForKind(ctx, cfg.Executor, cfg.URL, testsPath)
			if err != nil {
				return err
			}

			p := planner.NewOffline(steps)
			rep := reporter.NewReporting(plain.New(ctx, log))

			w := walker.New(p, exec, rep, nil, "")
			result, err := w.Run(ctx)
			if err != nil {
				return err
			}

			if !result.Passed {
				cmd.SilenceUsage = true
				return errRunFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), "path replayed successfully")
			return nil
		},
	}

	cmd.Flags().StringVarP(&execKind, "executor", "x", "http", "executor kind (http|offline)")
	cmd.Flags().StringVar(&execURL, "url", "http://localhost:5000", "executor base URL")

	return cmd
}
