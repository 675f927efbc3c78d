package apiclient

import (
	"context"
	"errors"
	"strconv"
)

// DefaultAnnotationFormat is the export format used when none is given.
const DefaultAnnotationFormat = "YOLO"

// CheckLabelStudio reports whether the backend can reach Label Studio.
func (c *Client) CheckLabelStudio(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointLabelStudioCheck, Request{})
}

// ListAnnotationProjects retrieves the Label Studio projects.
func (c *Client) ListAnnotationProjects(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointAnnotationProjects, Request{})
}

// CreateAnnotationProject creates a Label Studio project. Both title and
// description are always sent; an empty description is transmitted as "".
func (c *Client) CreateAnnotationProject(ctx context.Context, title, description string) (*Response, error) {
	if title == "" {
		return nil, invalidInput(EndpointCreateProject.Name, errors.New("title is required"))
	}
	return c.Perform(ctx, EndpointCreateProject, Request{
		Fields: []Field{
			{Name: "title", Value: title},
			{Name: "description", Value: description},
		},
	})
}

// ExportAnnotations converts a project's annotations into a dataset named
// datasetName. An empty format means DefaultAnnotationFormat.
func (c *Client) ExportAnnotations(ctx context.Context, projectID int, datasetName, format string) (*Response, error) {
	if datasetName == "" {
		return nil, invalidInput(EndpointExportAnnotations.Name, errors.New("dataset name is required"))
	}
	if format == "" {
		format = DefaultAnnotationFormat
	}
	return c.Perform(ctx, EndpointExportAnnotations, Request{
		PathParams: map[string]string{"project_id": strconv.Itoa(projectID)},
		Fields: []Field{
			{Name: "dataset_name", Value: datasetName},
			{Name: "format", Value: format},
		},
	})
}
