package apiclient

import "context"

// GetSystemInfo retrieves application, runtime and GPU information.
func (c *Client) GetSystemInfo(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointSystemInfo, Request{})
}

// HealthCheck retrieves the backend health summary.
func (c *Client) HealthCheck(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointHealth, Request{})
}
