package apiclient

import "context"

// ListModels retrieves the stored models.
func (c *Client) ListModels(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointListModels, Request{})
}

// UploadModel uploads a weights file.
func (c *Client) UploadModel(ctx context.Context, weights Blob) (*Response, error) {
	return c.Perform(ctx, EndpointUploadModel, Request{
		Fields: []Field{{Name: "file", Value: weights}},
	})
}

// ExportModel converts a stored model to another format.
func (c *Client) ExportModel(ctx context.Context, cfg ExportConfig) (*Response, error) {
	if err := cfg.Validate(); err != nil {
		return nil, invalidInput(EndpointExportModel.Name, err)
	}
	return c.Perform(ctx, EndpointExportModel, Request{Body: cfg})
}
