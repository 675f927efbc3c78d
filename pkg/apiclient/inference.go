package apiclient

import (
	"context"
	"errors"
)

// InferenceOptions are the optional form fields of single-image inference.
// Nil fields are not sent and the backend applies its own defaults.
type InferenceOptions struct {
	ModelName    *string
	Confidence   *float64
	IoUThreshold *float64
	ImgSize      *int
}

// BatchInferenceOptions are the optional form fields of batch inference.
type BatchInferenceOptions struct {
	ModelName  *string
	Confidence *float64
}

// InferImage runs detection on one image.
func (c *Client) InferImage(ctx context.Context, image Blob, opts InferenceOptions) (*Response, error) {
	return c.Perform(ctx, EndpointInferImage, Request{
		Fields: []Field{
			{Name: "file", Value: image},
			{Name: "model_name", Value: opts.ModelName},
			{Name: "confidence", Value: opts.Confidence},
			{Name: "iou_threshold", Value: opts.IoUThreshold},
			{Name: "img_size", Value: opts.ImgSize},
		},
	})
}

// InferBatch runs detection on several images. Every image is sent under the
// shared "files" field, in order.
func (c *Client) InferBatch(ctx context.Context, images []Blob, opts BatchInferenceOptions) (*Response, error) {
	if len(images) == 0 {
		return nil, invalidInput(EndpointInferBatch.Name, errors.New("at least one image is required"))
	}
	return c.Perform(ctx, EndpointInferBatch, Request{
		Fields: []Field{
			{Name: "files", Value: images},
			{Name: "model_name", Value: opts.ModelName},
			{Name: "confidence", Value: opts.Confidence},
		},
	})
}
