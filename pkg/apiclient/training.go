package apiclient

import "context"

// StartTraining submits a training run.
func (c *Client) StartTraining(ctx context.Context, cfg TrainingConfig) (*Response, error) {
	if err := cfg.Validate(); err != nil {
		return nil, invalidInput(EndpointStartTraining.Name, err)
	}
	return c.Perform(ctx, EndpointStartTraining, Request{Body: cfg})
}

// GetTrainingStatus retrieves the state of one training task.
func (c *Client) GetTrainingStatus(ctx context.Context, taskID string) (*Response, error) {
	return c.Perform(ctx, EndpointTrainingStatus, Request{
		PathParams: map[string]string{"task_id": taskID},
	})
}

// ListTrainingTasks retrieves every known training task.
func (c *Client) ListTrainingTasks(ctx context.Context) (*Response, error) {
	return c.Perform(ctx, EndpointTrainingTasks, Request{})
}
