package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/altwalker/altwalker-go/internal/alog"
	"github.com/altwalker/altwalker-go/internal/altwalkerconfig"
	"github.com/altwalker/altwalker-go/internal/generatorproc"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/planner"
	"github.com/altwalker/altwalker-go/internal/reporter"
	"github.com/altwalker/altwalker-go/internal/reporter/jsonl"
	"github.com/altwalker/altwalker-go/internal/reporter/junit"
	"github.com/altwalker/altwalker-go/internal/reporter/live"
	"github.com/altwalker/altwalker-go/internal/reporter/plain"
	"github.com/altwalker/altwalker-go/internal/walker"
)

func newOnlineCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var models []string
	var execKind string
	var execURL string
	var reportFile string
	var reportXMLFile string
	var reportPath bool
	var verbose bool
	var unvisited bool

	cmd := &cobra.Command{
		Use:   "online <tests>",
		Short: "Run tests against a live path-generator subprocess",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testsPath := args[0]
			ctx, log := app.CommandContext(cmd, "online")

			cfg := altwalkerconfig.Merge(root.config, altwalkerconfig.Config{
				Executor:      execKind,
				URL:           execURL,
				ReportFile:    reportFile,
				ReportXMLFile: reportXMLFile,
				ReportPath:    reportPath,
				Verbose:       verbose,
				Unvisited:     unvisited,
			})

			flags, err := parseModelFlags(models)
			if err != nil {
				return err
			}
			ms, expression, err := loadModelSet(ctx, flags)
			if err != nil {
				return err
			}

			genClient, err := generatorproc.Start(ctx, generatorproc.Options{Host: root.gwHost, Port: root.gwPort})
			if err != nil {
				return err
			}
			if err := genClient.Load(ctx, ms, expression); err != nil {
				genClient.Close()
				return err
			}
			p := planner.NewOnline(genClient, cfg.Verbose || root.verbose, cfg.Unvisited)

			exec, err := newExecutorForKind(ctx, cfg.Executor, cfg.URL, testsPath)
			if err != nil {
				p.Close()
				return err
			}

			rep, jr := buildReporting(ctx, log, testsPath, cfg.ReportFile, cfg.ReportXMLFile, cfg.ReportPath, cfg.Verbose || root.verbose)

			w := walker.New(p, exec, rep, ms, expression)
			result, err := w.Run(ctx)
			if err != nil {
				return err
			}

			if cfg.ReportXMLFile != "" {
				if err := writeJUnitReport(cfg.ReportXMLFile, jr); err != nil {
					return err
				}
			}
			if cfg.ReportPath {
				printOutcomes(cmd, result.Outcomes)
			}
			if !result.Passed {
				cmd.SilenceUsage = true
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "model file as path:expression (repeatable)")
	cmd.Flags().StringVarP(&execKind, "executor", "x", "http", "executor kind (http|python|dotnet|offline)")
	cmd.Flags().StringVar(&execURL, "url", "http://localhost:5000", "executor base URL")
	cmd.Flags().StringVar(&reportFile, "report-file", "", "write one JSON object per event to this file")
	cmd.Flags().BoolVar(&reportPath, "report-path", false, "print the executed path to stdout")
	cmd.Flags().StringVar(&reportXMLFile, "report-xml-file", "", "write a JUnit XML report to this file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose step reporting and request verbose getNext payloads")
	cmd.Flags().BoolVar(&unvisited, "unvisited", false, "ask the generator to include the not-yet-visited elements in every step")
	cmd.MarkFlagRequired("model") //nolint:errcheck

	return cmd
}

// buildReporting composes the configured concrete reporters: jsonl/junit
// when their output files are requested, plus either the live TUI (when
// stdout is a terminal and neither verbose nor report-path forces plain
// output) or the plain logger-backed reporter otherwise. The returned
// junit.Reporter is nil unless reportXMLFile was set; the caller writes
// its Report() to reportXMLFile once the run completes.
func buildReporting(ctx context.Context, log alog.Logger, suiteName string, reportFile, reportXMLFile string, reportPath, verbose bool) (*reporter.Reporting, *junit.Reporter) {
	var reporters []reporter.Reporter
	var jr *junit.Reporter

	if reportFile != "" {
		if f, err := os.Create(reportFile); err == nil {
			reporters = append(reporters, jsonl.New(f))
		}
	}
	if reportXMLFile != "" {
		jr = junit.New(suiteName)
		reporters = append(reporters, jr)
	}

	useLive := term.IsTerminal(int(os.Stdout.Fd())) && !verbose && !reportPath
	if useLive {
		reporters = append(reporters, live.New())
	} else {
		reporters = append(reporters, plain.New(ctx, log))
	}

	return reporter.NewReporting(reporters...), jr
}

func writeJUnitReport(path string, jr *junit.Reporter) error {
	if jr == nil {
		return nil
	}
	suite, ok := jr.Report().(junit.Suite)
	if !ok {
		return nil
	}
	raw, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("altwalker: encode junit report: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func printOutcomes(cmd *cobra.Command, outcomes []model.StepOutcome) {
	for _, o := range outcomes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: %s\n", o.Step.ModelName, o.Step.Name, o.Status)
	}
}
