package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a local journal of training tasks seen by the CLI.

// TaskRecord is one journaled training task.
type TaskRecord struct {
	TaskID      string    `json:"task_id"`
	ProjectName string    `json:"project_name,omitempty"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Notified    bool      `json:"notified"`
}

// Store journals training tasks.
type Store interface {
	Close() error
	// PutTask upserts a record. Zero-valued ProjectName and SubmittedAt keep
	// the stored values, and Notified is never cleared.
	PutTask(rec TaskRecord) error
	Task(id string) (TaskRecord, bool, error)
	// Tasks returns live records, most recently updated first.
	Tasks() ([]TaskRecord, error)
	MarkNotified(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TaskTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTaskTTL         = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TaskTTL <= 0 {
		opts.TaskTTL = defaultTaskTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) PutTask(TaskRecord) error              { return nil }
func (noopStore) Task(string) (TaskRecord, bool, error) { return TaskRecord{}, false, nil }
func (noopStore) Tasks() ([]TaskRecord, error)          { return nil, nil }
func (noopStore) MarkNotified(string) error             { return nil }
