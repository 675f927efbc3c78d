package main

import (
	"github.com/spf13/cobra"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func modelsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List, upload and export models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	upload := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a weights file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := apiclient.OpenBlob(args[0])
			if err != nil {
				return err
			}
			resp, err := e.client.UploadModel(cmd.Context(), blob)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	var configPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export a model to another format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadExportConfig(configPath)
			if err != nil {
				return err
			}
			resp, err := e.client.ExportModel(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}
	export.Flags().StringVarP(&configPath, "config", "c", "", "Export config file (.yaml, .yml or .json)")
	_ = export.MarkFlagRequired("config")

	cmd.AddCommand(list, upload, export)
	return cmd
}
