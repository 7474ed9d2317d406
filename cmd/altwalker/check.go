package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/validator"
)

var errRunFailed = errors.New("run failed")

// generatorChecker adapts generatorproc.Check to validator.ModelChecker.
type generatorChecker struct{ command string }

func (g generatorChecker) Check(ctx context.Context, ms *model.ModelSet, expression string) ([]string, error) {
	return generatorproc.Check(ctx, ms, expression, generatorproc.CheckOptions{Command: g.command})
}

func newCheckCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var models []string
	var gwCommand string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate model files and the generator expressions they use",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := parseModelFlags(models)
			if err != nil {
				return err
			}
			ms, expression, err := loadModelSet(cmd.Context(), flags)
			if err != nil {
				return err
			}

			report, err := validator.CheckModels(cmd.Context(), ms, expression, generatorChecker{command: gwCommand})
			if err != nil {
				return err
			}
			if !report.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), report.Error())
				cmd.SilenceUsage = true
				return errRunFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all models are valid")
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "model file as path:expression (repeatable)")
	cmd.Flags().StringVar(&gwCommand, "gw-command", "", "command used to invoke the generator CLI (defaults to \"gw\")")
	cmd.MarkFlagRequired("model") //nolint:errcheck

	return cmd
}
