package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func labelStudioCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labelstudio",
		Aliases: []string{"ls"},
		Short:   "Manage Label Studio annotation projects",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Check that the backend can reach Label Studio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.client.CheckLabelStudio(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	projects := &cobra.Command{
		Use:   "projects",
		Short: "List annotation projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.client.ListAnnotationProjects(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	var description string
	create := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create an annotation project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := e.client.CreateAnnotationProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}
	create.Flags().StringVar(&description, "description", "", "Project description")

	var (
		datasetName string
		format      string
	)
	export := &cobra.Command{
		Use:   "export PROJECT_ID",
		Short: "Export a project's annotations as a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w: project id %q is not an integer", apiclient.EndpointExportAnnotations.Name, apiclient.ErrInvalidInput, args[0])
			}
			resp, err := e.client.ExportAnnotations(cmd.Context(), projectID, datasetName, format)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}
	export.Flags().StringVar(&datasetName, "dataset", "", "Name of the dataset to create")
	export.Flags().StringVar(&format, "format", apiclient.DefaultAnnotationFormat, "Annotation export format")
	_ = export.MarkFlagRequired("dataset")

	cmd.AddCommand(check, projects, create, export)
	return cmd
}
