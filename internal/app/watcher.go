package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/vision-client/internal/logger"
	"github.com/samvad-hq/vision-client/internal/storage"
	"github.com/samvad-hq/vision-client/pkg/apiclient"
	"github.com/samvad-hq/vision-client/pkg/notifiers"
)

// StatusSource fetches the current state of a training task.
type StatusSource interface {
	GetTrainingStatus(ctx context.Context, taskID string) (*apiclient.Response, error)
}

// Dispatcher delivers events downstream. *notifiers.Fanout satisfies it.
type Dispatcher interface {
	Notify(ctx context.Context, evt notifiers.Event) (int, error)
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithObserver registers a callback invoked with every polled status.
func WithObserver(fn func(apiclient.TrainingStatus)) WatcherOption {
	return func(w *Watcher) { w.observe = fn }
}

// Watcher polls training tasks until they settle, journals every observation
// and dispatches one event per task reaching a terminal status.
type Watcher struct {
	src      StatusSource
	store    storage.Store
	dispatch Dispatcher
	interval time.Duration
	log      logger.Logger
	observe  func(apiclient.TrainingStatus)
}

// NewWatcher wires a watcher. A nil store or dispatcher disables journaling
// or notification respectively.
func NewWatcher(src StatusSource, store storage.Store, dispatch Dispatcher, interval time.Duration, log logger.Logger, opts ...WatcherOption) (*Watcher, error) {
	if src == nil {
		return nil, fmt.Errorf("status source must not be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	w := &Watcher{
		src:      src,
		store:    store,
		dispatch: dispatch,
		interval: interval,
		log:      log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run polls the given tasks until all are terminal or ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, taskIDs []string) error {
	if w == nil || w.src == nil {
		return fmt.Errorf("watcher is not initialized")
	}

	pending := make(map[string]struct{}, len(taskIDs))
	order := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := pending[id]; dup {
			continue
		}
		pending[id] = struct{}{}
		order = append(order, id)
	}
	if len(order) == 0 {
		return fmt.Errorf("no task ids to watch")
	}

	w.log.InfoObj("watch loop starting", "watch_state", map[string]any{
		"tasks":    order,
		"interval": w.interval.String(),
	})

	if err := w.pollOnce(ctx, order, pending); err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.pollOnce(ctx, order, pending); err != nil {
				return err
			}
			if len(pending) == 0 {
				w.log.InfoObj("all watched tasks settled", "tasks", order)
				return nil
			}
		}
	}
}

// pollOnce checks every pending task. Only cancellation aborts the loop;
// other failures are logged and retried on the next tick.
func (w *Watcher) pollOnce(ctx context.Context, order []string, pending map[string]struct{}) error {
	for _, id := range order {
		if _, ok := pending[id]; !ok {
			continue
		}
		st, err := w.fetch(ctx, id)
		if err != nil {
			if errors.Is(err, apiclient.ErrCancelled) || ctx.Err() != nil {
				return nil
			}
			if taskGone(err) {
				delete(pending, id)
				w.log.ErrorObj("training task unknown to backend; no longer watched", "watch_error", map[string]any{
					"task_id": id,
					"error":   err.Error(),
				})
				continue
			}
			w.log.WarnObj("training status poll failed", "watch_error", map[string]any{
				"task_id": id,
				"error":   err.Error(),
			})
			continue
		}
		if w.observe != nil {
			w.observe(st)
		}
		if err := w.store.PutTask(storage.TaskRecord{
			TaskID:    id,
			Status:    st.Status,
			Progress:  st.Progress,
			UpdatedAt: time.Now().UTC(),
		}); err != nil {
			w.log.WarnObj("journal write failed", "watch_error", map[string]any{
				"task_id": id,
				"error":   err.Error(),
			})
		}
		if st.Terminal() {
			delete(pending, id)
			w.settle(ctx, id, st)
		}
	}
	return nil
}

func (w *Watcher) fetch(ctx context.Context, id string) (apiclient.TrainingStatus, error) {
	var st apiclient.TrainingStatus
	resp, err := w.src.GetTrainingStatus(ctx, id)
	if err != nil {
		return st, err
	}
	if !resp.OK() {
		if resp.StatusCode == http.StatusNotFound {
			return st, fmt.Errorf("training status %s: %w", id, errTaskNotFound)
		}
		return st, fmt.Errorf("training status %s: http %d", id, resp.StatusCode)
	}
	if err := resp.Decode(&st); err != nil {
		return st, fmt.Errorf("decode training status %s: %w", id, err)
	}
	if st.TaskID == "" {
		st.TaskID = id
	}
	return st, nil
}

var errTaskNotFound = errors.New("task not found")

// taskGone reports a 404 for the task, which polling cannot recover from:
// the backend forgets tasks on restart.
func taskGone(err error) bool {
	if errors.Is(err, errTaskNotFound) {
		return true
	}
	var apiErr *apiclient.Error
	return errors.As(err, &apiErr) && apiErr.Kind == apiclient.KindStatus && apiErr.StatusCode == http.StatusNotFound
}

// settle dispatches the terminal event unless the journal says it was
// already delivered to every sink.
func (w *Watcher) settle(ctx context.Context, id string, st apiclient.TrainingStatus) {
	rec, found, err := w.store.Task(id)
	if err != nil {
		w.log.WarnObj("journal read failed", "watch_error", map[string]any{
			"task_id": id,
			"error":   err.Error(),
		})
	}
	if found && rec.Notified {
		w.log.DebugObj("task already notified", "task_id", id)
		return
	}
	if w.dispatch == nil {
		return
	}

	delivered, err := w.dispatch.Notify(ctx, notifiers.NewEvent(rec.ProjectName, st))
	if err != nil {
		w.log.ErrorObj("task notification failed", "watch_error", map[string]any{
			"task_id":   id,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
	// A partial fanout stays unmarked so a later watch redelivers to every sink.
	if err == nil {
		if err := w.store.MarkNotified(id); err != nil {
			w.log.WarnObj("journal mark notified failed", "watch_error", map[string]any{
				"task_id": id,
				"error":   err.Error(),
			})
		}
	}
	w.log.InfoObj("training task settled", "task", map[string]any{
		"task_id":   id,
		"status":    st.Status,
		"delivered": delivered,
	})
}
