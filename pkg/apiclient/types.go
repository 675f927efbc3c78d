package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts both RFC 3339 and the zone-less ISO 8601 form the backend
// emits (Python's datetime.isoformat on naive datetimes).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Training task states reported by the backend.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// SystemInfo is the body of get system info.
type SystemInfo struct {
	AppName            string  `json:"app_name"`
	Version            string  `json:"version"`
	PythonVersion      string  `json:"python_version"`
	UltralyticsVersion string  `json:"ultralytics_version"`
	TotalModels        int     `json:"total_models"`
	TotalDatasets      int     `json:"total_datasets"`
	GPUAvailable       bool    `json:"gpu_available"`
	GPUInfo            *string `json:"gpu_info"`
}

// HealthStatus is the body of health check.
type HealthStatus struct {
	Status               string    `json:"status"`
	Timestamp            Timestamp `json:"timestamp"`
	YOLOService          bool      `json:"yolo_service"`
	LabelStudioAvailable bool      `json:"labelstudio_available"`
}

// Detection is a single detected object.
type Detection struct {
	ClassID    int       `json:"class_id"`
	ClassName  string    `json:"class_name"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// InferenceResponse is the body of infer single image.
type InferenceResponse struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	Detections    []Detection `json:"detections"`
	InferenceTime float64     `json:"inference_time"`
	ImageShape    []int       `json:"image_shape"`
}

// TrainingConfig is the body of start training.
type TrainingConfig struct {
	ProjectName string  `json:"project_name" yaml:"project_name"`
	DatasetPath string  `json:"dataset_path" yaml:"dataset_path"`
	ModelType   string  `json:"model_type" yaml:"model_type"`
	Epochs      int     `json:"epochs" yaml:"epochs"`
	BatchSize   int     `json:"batch_size" yaml:"batch_size"`
	ImgSize     int     `json:"img_size" yaml:"img_size"`
	Device      string  `json:"device" yaml:"device"`
	Patience    int     `json:"patience" yaml:"patience"`
	SavePeriod  int     `json:"save_period" yaml:"save_period"`
	Pretrained  bool    `json:"pretrained" yaml:"pretrained"`
	Optimizer   string  `json:"optimizer" yaml:"optimizer"`
	LR0         float64 `json:"lr0" yaml:"lr0"`
	LRF         float64 `json:"lrf" yaml:"lrf"`
}

// NewTrainingConfig returns a config carrying the backend's defaults.
func NewTrainingConfig(projectName, datasetPath string) TrainingConfig {
	return TrainingConfig{
		ProjectName: projectName,
		DatasetPath: datasetPath,
		ModelType:   "yolo11n",
		Epochs:      100,
		BatchSize:   16,
		ImgSize:     640,
		Device:      "cpu",
		Patience:    50,
		SavePeriod:  10,
		Pretrained:  true,
		Optimizer:   "auto",
		LR0:         0.01,
		LRF:         0.01,
	}
}

// Validate checks the fields the backend requires.
func (c TrainingConfig) Validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("dataset_path is required")
	}
	return nil
}

// TrainingStarted is the body of start training.
type TrainingStarted struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// TrainingTasks is the body of list training tasks.
type TrainingTasks struct {
	Tasks []TrainingStatus `json:"tasks"`
}

// TrainingStatus is the body of get training status.
type TrainingStatus struct {
	TaskID       string         `json:"task_id"`
	Status       string         `json:"status"`
	Progress     float64        `json:"progress"`
	CurrentEpoch int            `json:"current_epoch"`
	TotalEpochs  int            `json:"total_epochs"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	CreatedAt    Timestamp      `json:"created_at"`
	UpdatedAt    Timestamp      `json:"updated_at"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// Terminal reports whether the task will not change state again.
func (s TrainingStatus) Terminal() bool {
	return s.Status == TaskCompleted || s.Status == TaskFailed
}

// ModelInfo describes a stored model.
type ModelInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	CreatedAt  Timestamp `json:"created_at"`
	ModelType  string    `json:"model_type"`
	Task       string    `json:"task"`
	InputShape []int     `json:"input_shape,omitempty"`
	Classes    []string  `json:"classes,omitempty"`
}

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	NumImages  int            `json:"num_images"`
	NumClasses int            `json:"num_classes"`
	Classes    []string       `json:"classes"`
	Split      map[string]int `json:"split"`
	CreatedAt  Timestamp      `json:"created_at"`
}

// ExportConfig is the body of export model.
type ExportConfig struct {
	ModelPath string `json:"model_path" yaml:"model_path"`
	// Format is one of onnx, torchscript, coreml, saved_model, pb, tflite,
	// edgetpu, tfjs.
	Format    string `json:"format" yaml:"format"`
	ImgSize   []int  `json:"img_size" yaml:"img_size"`
	BatchSize int    `json:"batch_size" yaml:"batch_size"`
	Optimize  bool   `json:"optimize" yaml:"optimize"`
	Half      bool   `json:"half" yaml:"half"`
	Simplify  bool   `json:"simplify" yaml:"simplify"`
	Dynamic   bool   `json:"dynamic" yaml:"dynamic"`
	Opset     int    `json:"opset" yaml:"opset"`
}

// NewExportConfig returns an export config carrying the backend's defaults.
func NewExportConfig(modelPath string) ExportConfig {
	return ExportConfig{
		ModelPath: modelPath,
		Format:    "onnx",
		ImgSize:   []int{640, 640},
		BatchSize: 1,
		Simplify:  true,
		Opset:     12,
	}
}

// Validate checks the fields the backend requires.
func (c ExportConfig) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	return nil
}

// LabelStudioProject is an annotation project.
type LabelStudioProject struct {
	ID          *int      `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
}
