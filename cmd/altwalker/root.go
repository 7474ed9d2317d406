package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/altwalker/altwalker-go/internal/altwalkerconfig"
)

type rootFlags struct {
	verbose   bool
	config    altwalkerconfig.Config
	gwHost    string
	gwPort    int
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "altwalker",
		Short:         "Model-based test runner driven by an external path generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := altwalkerconfig.Load(".altwalker.yml")
			if err != nil {
				return err
			}
			flags.config = cfg
			if flags.gwHost == "" {
				flags.gwHost = firstNonEmpty(cfg.GWHost, os.Getenv("ALTWALKER_GRAPHWALKER_HOST"))
			}
			if flags.gwPort == 0 {
				flags.gwPort = firstNonZeroPort(cfg.GWPort, os.Getenv("ALTWALKER_GRAPHWALKER_PORT"))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.gwHost, "gw-host", "", "GraphWalker host (defaults to 127.0.0.1)")
	cmd.PersistentFlags().IntVar(&flags.gwPort, "gw-port", 0, "GraphWalker port (defaults to an OS-assigned port)")

	cmd.AddCommand(newCheckCmd(flags, app))
	cmd.AddCommand(newVerifyCmd(flags, app))
	cmd.AddCommand(newOnlineCmd(flags, app))
	cmd.AddCommand(newOfflineCmd(flags, app))
	cmd.AddCommand(newWalkCmd(flags, app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroPort(configured int, env string) int {
	if configured != 0 {
		return configured
	}
	if port, err := strconv.Atoi(env); err == nil {
		return port
	}
	return 0
}
