package notifiers

import (
	"testing"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func TestNewEventCopiesStatus(t *testing.T) {
	msg := "out of memory"
	evt := NewEvent("coco", apiclient.TrainingStatus{
		TaskID:       "t-1",
		Status:       apiclient.TaskFailed,
		Progress:     42.5,
		CurrentEpoch: 3,
		TotalEpochs:  10,
		ErrorMessage: &msg,
	})
	if evt.TaskID != "t-1" || evt.ProjectName != "coco" || evt.Status != apiclient.TaskFailed {
		t.Fatalf("unexpected event: %#v", evt)
	}
	if evt.ErrorMessage != msg {
		t.Fatalf("error message = %q", evt.ErrorMessage)
	}
	if evt.ObservedAt.IsZero() {
		t.Fatalf("observed_at not set")
	}
	attrs := evt.attributes()
	if attrs["task_id"] != "t-1" || attrs["status"] != apiclient.TaskFailed {
		t.Fatalf("attributes = %#v", attrs)
	}
}
