package apiclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAcceptsNaiveISO(t *testing.T) {
	var status TrainingStatus
	err := json.Unmarshal([]byte(`{
		"task_id": "t1",
		"status": "completed",
		"progress": 100,
		"current_epoch": 10,
		"total_epochs": 10,
		"created_at": "2025-03-01T10:20:30.123456",
		"updated_at": "2025-03-01T11:00:00Z",
		"error_message": null
	}`), &status)
	require.NoError(t, err)

	assert.True(t, status.Terminal())
	assert.Equal(t, 2025, status.CreatedAt.Year())
	assert.Equal(t, 123456000, status.CreatedAt.Nanosecond())
	assert.True(t, status.UpdatedAt.Equal(time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)))
	assert.Nil(t, status.ErrorMessage)
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
}

func TestConfigDefaults(t *testing.T) {
	tc := NewTrainingConfig("p", "d")
	assert.Equal(t, 100, tc.Epochs)
	assert.Equal(t, "yolo11n", tc.ModelType)
	assert.NoError(t, tc.Validate())
	assert.Error(t, TrainingConfig{}.Validate())

	ec := NewExportConfig("models/best.pt")
	assert.Equal(t, "onnx", ec.Format)
	assert.Equal(t, []int{640, 640}, ec.ImgSize)
	assert.True(t, ec.Simplify)
	assert.Error(t, ExportConfig{}.Validate())
}
