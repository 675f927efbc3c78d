package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "visionctl",
		Short: "Command line client for the vision platform API",
		Long: `visionctl talks to the vision platform backend (/api/v1).

Configuration comes from configs/.env and the environment, e.g.
  API_BASE_URL=http://localhost:8000 visionctl system health`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.setup()
		},
	}
	root.SetOut(e.out)
	root.SetErr(e.errOut)

	root.AddCommand(
		systemCmd(e),
		inferCmd(e),
		trainingCmd(e),
		modelsCmd(e),
		datasetsCmd(e),
		labelStudioCmd(e),
	)

	return root
}
