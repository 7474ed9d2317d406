package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/altwalkerconfig"
	"github.com/altwalker/altwalker-go/internal/executor"
	"github.com/altwalker/altwalker-go/internal/verifier"
)

func newVerifyCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var models []string
	var language string
	var execKind string
	var execURL string
	var testsPath string

	cmd := &cobra.Command{
		Use:   "verify <tests>",
		Short: "Check that the loaded test code implements every model element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testsPath = args[0]

			flags, err := parseModelFlags(models)
			if err != nil {
				return err
			}
			ms, _, err := loadModelSet(cmd.Context(), flags)
			if err != nil {
				return err
			}

			cfg := altwalkerconfig.Merge(root.config, altwalkerconfig.Config{Executor: execKind, URL: execURL})

			exec, err := newExecutorForKind(cmd.Context(), cfg.Executor, cfg.URL, testsPath)
			if err != nil {
				return err
			}
			defer exec.Kill()

			report, err := verifier.Verify(cmd.Context(), exec, ms, verifier.SuggesterFor(language))
			if err != nil {
				return err
			}

			if !report.OK() {
				fmt.Fprint(cmd.OutOrStdout(), report.String())
				cmd.SilenceUsage = true
				return errRunFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), "test code matches every model")
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "model file as path:expression (repeatable)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "target test language, for code suggestions (python|csharp|java|javascript)")
	cmd.Flags().StringVarP(&execKind, "executor", "x", "http", "executor kind (http|offline)")
	cmd.Flags().StringVar(&execURL, "url", "http://localhost:5000", "executor base URL")
	cmd.MarkFlagRequired("model") //nolint:errcheck

	return cmd
}

func newExecutorForKind(ctx context.Context, kind, url, testsPath string) (executor.Executor, error) {
	switch kind {
	case "offline":
		return executor.NewOffline(), nil
	default:
		return executor.NewHTTP(ctx, executor.HTTPOptions{URL: url, TestPath: testsPath})
	}
}
