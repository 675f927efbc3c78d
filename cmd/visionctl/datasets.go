package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func datasetsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List and upload datasets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.client.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	upload := &cobra.Command{
		Use:   "upload FILE.zip",
		Short: "Upload a zipped dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(filepath.Ext(args[0]), ".zip") {
				return fmt.Errorf("%s: %w: dataset must be a .zip archive", apiclient.EndpointUploadDataset.Name, apiclient.ErrInvalidInput)
			}
			blob, err := apiclient.OpenBlob(args[0])
			if err != nil {
				return err
			}
			if blob.ContentType == "" || blob.ContentType == "application/octet-stream" {
				blob.ContentType = "application/zip"
			}
			resp, err := e.client.UploadDataset(cmd.Context(), blob)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	cmd.AddCommand(list, upload)
	return cmd
}
