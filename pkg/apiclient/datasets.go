package apiclient

import "context"

// ListDatasets retrieves the stored datasets.
func (c *Client) ListDatasets(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointListDatasets, Request{})
}

// UploadDataset uploads a zipped dataset.
func (c *Client) UploadDataset(ctx context.Context, archive Blob) (*Response, error) {
	return c.Perform(ctx, EndpointUploadDataset, Request{
		Fields: []Field{{Name: "file", Value: archive}},
	})
}
