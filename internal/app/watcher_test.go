package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/vision-client/internal/storage"
	"github.com/samvad-hq/vision-client/pkg/apiclient"
	"github.com/samvad-hq/vision-client/pkg/notifiers"
)

// scriptedSource replays statuses per task; the last entry repeats.
type scriptedSource struct {
	mu     sync.Mutex
	script map[string][]string
	calls  map[string]int
	err    error
}

func (s *scriptedSource) GetTrainingStatus(_ context.Context, taskID string) (*apiclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	n := s.calls[taskID]
	s.calls[taskID]++
	if s.err != nil {
		return nil, s.err
	}
	steps, ok := s.script[taskID]
	if !ok {
		return &apiclient.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"detail":"Task not found"}`)}, nil
	}
	if n >= len(steps) {
		n = len(steps) - 1
	}
	body := fmt.Sprintf(`{"task_id":%q,"status":%q,"progress":50,"current_epoch":1,"total_epochs":2,"created_at":"2024-01-01T00:00:00","updated_at":"2024-01-01T00:00:00"}`, taskID, steps[n])
	return &apiclient.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notifiers.Event
	err    error
}

func (d *recordingDispatcher) Notify(_ context.Context, evt notifiers.Event) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
	if d.err != nil {
		return 0, d.err
	}
	return 1, nil
}

func newJournal(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "journal.db"), storage.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestWatcherNotifiesOncePerTerminalTask(t *testing.T) {
	src := &scriptedSource{script: map[string][]string{
		"a": {apiclient.TaskPending, apiclient.TaskRunning, apiclient.TaskCompleted},
		"b": {apiclient.TaskFailed},
	}}
	store := newJournal(t)
	require.NoError(t, store.PutTask(storage.TaskRecord{TaskID: "a", ProjectName: "coco", Status: apiclient.TaskPending}))
	dispatch := &recordingDispatcher{}

	var seen []string
	w, err := NewWatcher(src, store, dispatch, 5*time.Millisecond, nil,
		WithObserver(func(st apiclient.TrainingStatus) { seen = append(seen, st.TaskID+":"+st.Status) }))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Run(ctx, []string{"a", "b", "a", " "}))

	require.Len(t, dispatch.events, 2)
	byID := map[string]notifiers.Event{}
	for _, evt := range dispatch.events {
		byID[evt.TaskID] = evt
	}
	assert.Equal(t, apiclient.TaskCompleted, byID["a"].Status)
	assert.Equal(t, "coco", byID["a"].ProjectName)
	assert.Equal(t, apiclient.TaskFailed, byID["b"].Status)

	assert.Equal(t, 3, src.calls["a"])
	assert.Equal(t, 1, src.calls["b"])
	assert.Contains(t, seen, "a:running")

	rec, found, err := store.Task("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.Notified)
	assert.Equal(t, apiclient.TaskCompleted, rec.Status)
}

func TestWatcherSkipsAlreadyNotified(t *testing.T) {
	src := &scriptedSource{script: map[string][]string{"a": {apiclient.TaskCompleted}}}
	store := newJournal(t)
	require.NoError(t, store.PutTask(storage.TaskRecord{TaskID: "a", Status: apiclient.TaskCompleted}))
	require.NoError(t, store.MarkNotified("a"))
	dispatch := &recordingDispatcher{}

	w, err := NewWatcher(src, store, dispatch, time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background(), []string{"a"}))
	assert.Empty(t, dispatch.events)
}

func TestWatcherLeavesTaskUnnotifiedWhenDeliveryFails(t *testing.T) {
	src := &scriptedSource{script: map[string][]string{"a": {apiclient.TaskCompleted}}}
	store := newJournal(t)
	dispatch := &recordingDispatcher{err: errors.New("sink down")}

	w, err := NewWatcher(src, store, dispatch, time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background(), []string{"a"}))

	require.Len(t, dispatch.events, 1)
	rec, found, err := store.Task("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, rec.Notified)
}

func TestWatcherRetriesUntilCancelled(t *testing.T) {
	src := &scriptedSource{err: errors.New("connection refused")}
	w, err := NewWatcher(src, nil, nil, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx, []string{"a"}))

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Greater(t, src.calls["a"], 1)
}

func TestWatcherDropsUnknownTask(t *testing.T) {
	src := &scriptedSource{script: map[string][]string{"a": {apiclient.TaskCompleted}}}
	w, err := NewWatcher(src, nil, nil, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Run(ctx, []string{"missing", "a"}))
	require.NoError(t, ctx.Err(), "watch should end once the unknown task is dropped")
	assert.Equal(t, 1, src.calls["missing"])
}

func TestWatcherDropsTaskOnStrictNotFound(t *testing.T) {
	src := &scriptedSource{err: &apiclient.Error{
		Op:         apiclient.EndpointTrainingStatus.Name,
		Kind:       apiclient.KindStatus,
		StatusCode: http.StatusNotFound,
		Detail:     "Task not found",
	}}
	w, err := NewWatcher(src, nil, nil, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Run(ctx, []string{"gone"}))
	require.NoError(t, ctx.Err())
	assert.Equal(t, 1, src.calls["gone"])
}

func TestWatcherPartialDeliveryIsRetried(t *testing.T) {
	src := &scriptedSource{script: map[string][]string{"a": {apiclient.TaskCompleted}}}
	store := newJournal(t)
	dispatch := &partialDispatcher{}

	w, err := NewWatcher(src, store, dispatch, time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Run(context.Background(), []string{"a"}))

	rec, found, err := store.Task("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, rec.Notified)

	// Second watch after the failing sink recovers delivers again and marks.
	dispatch.healthy = true
	require.NoError(t, w.Run(context.Background(), []string{"a"}))
	assert.Equal(t, 2, dispatch.calls)

	rec, _, err = store.Task("a")
	require.NoError(t, err)
	assert.True(t, rec.Notified)
}

// partialDispatcher simulates one sink succeeding and one failing until healthy.
type partialDispatcher struct {
	calls   int
	healthy bool
}

func (d *partialDispatcher) Notify(context.Context, notifiers.Event) (int, error) {
	d.calls++
	if d.healthy {
		return 2, nil
	}
	return 1, errors.New("notifier sqs (sqs): send message to sqs: throttled")
}

func TestNewWatcherValidation(t *testing.T) {
	_, err := NewWatcher(nil, nil, nil, time.Second, nil)
	assert.Error(t, err)

	_, err = NewWatcher(&scriptedSource{}, nil, nil, 0, nil)
	assert.Error(t, err)

	w, err := NewWatcher(&scriptedSource{}, nil, nil, time.Second, nil)
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background(), nil))
}
