package notifiers

import (
	"time"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

// Event is the payload delivered downstream when a training task settles.
type Event struct {
	TaskID       string         `json:"task_id"`
	ProjectName  string         `json:"project_name,omitempty"`
	Status       string         `json:"status"`
	Progress     float64        `json:"progress"`
	CurrentEpoch int            `json:"current_epoch"`
	TotalEpochs  int            `json:"total_epochs"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ObservedAt   time.Time      `json:"observed_at"`
}

// NewEvent constructs an Event for the given task status.
func NewEvent(projectName string, st apiclient.TrainingStatus) Event {
	evt := Event{
		TaskID:       st.TaskID,
		ProjectName:  projectName,
		Status:       st.Status,
		Progress:     st.Progress,
		CurrentEpoch: st.CurrentEpoch,
		TotalEpochs:  st.TotalEpochs,
		Metrics:      st.Metrics,
		ObservedAt:   time.Now().UTC(),
	}
	if st.ErrorMessage != nil {
		evt.ErrorMessage = *st.ErrorMessage
	}
	return evt
}

// attributes are the message attributes queue and topic sinks attach.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"task_id": e.TaskID,
		"status":  e.Status,
	}
}
