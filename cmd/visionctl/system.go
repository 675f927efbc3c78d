package main

import (
	"github.com/spf13/cobra"
)

func systemCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Backend information and health",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show backend versions, model and dataset counts, GPU",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				resp, err := e.client.GetSystemInfo(cmd.Context())
				if err != nil {
					return err
				}
				return e.printResponse(resp)
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check backend health",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				resp, err := e.client.HealthCheck(cmd.Context())
				if err != nil {
					return err
				}
				return e.printResponse(resp)
			},
		},
	)

	return cmd
}
