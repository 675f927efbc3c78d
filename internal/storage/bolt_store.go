package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	taskBucket       = "tasks"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Values are an 8-byte
// big-endian expiry (unix seconds) followed by the JSON record.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	taskTTL         time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(taskBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		taskTTL:         opts.TaskTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// PutTask upserts the record and refreshes its expiry.
func (b *boltStore) PutTask(rec TaskRecord) error {
	if b == nil || b.db == nil {
		return nil
	}
	if rec.TaskID == "" {
		return fmt.Errorf("task id is required")
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(taskBucket))
		if bucket == nil {
			return fmt.Errorf("task bucket missing")
		}
		key := []byte(rec.TaskID)
		if prev, ok := decodeRecord(bucket.Get(key), now); ok {
			rec = mergeRecord(prev, rec)
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now.UTC()
		}
		value, err := encodeRecord(rec, now.Add(b.taskTTL))
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// Task returns the live record with the given id.
func (b *boltStore) Task(id string) (TaskRecord, bool, error) {
	if b == nil || b.db == nil {
		return TaskRecord{}, false, nil
	}

	var (
		rec   TaskRecord
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(taskBucket))
		if bucket == nil {
			return fmt.Errorf("task bucket missing")
		}
		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		r, ok := decodeRecord(value, time.Now())
		if !ok {
			return bucket.Delete(key)
		}
		rec, found = r, true
		return nil
	})
	return rec, found, err
}

// Tasks returns every live record, most recently updated first.
func (b *boltStore) Tasks() ([]TaskRecord, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []TaskRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(taskBucket))
		if bucket == nil {
			return fmt.Errorf("task bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			if rec, ok := decodeRecord(v, now); ok {
				out = append(out, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// MarkNotified flags the task as delivered to notifiers.
func (b *boltStore) MarkNotified(id string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.PutTask(TaskRecord{TaskID: id, Notified: true})
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(taskBucket))
		if bucket == nil {
			return fmt.Errorf("task bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func mergeRecord(prev, next TaskRecord) TaskRecord {
	if next.ProjectName == "" {
		next.ProjectName = prev.ProjectName
	}
	if next.SubmittedAt.IsZero() {
		next.SubmittedAt = prev.SubmittedAt
	}
	if next.Status == "" {
		next.Status = prev.Status
		next.Progress = prev.Progress
		if next.UpdatedAt.IsZero() {
			next.UpdatedAt = prev.UpdatedAt
		}
	}
	next.Notified = next.Notified || prev.Notified
	return next
}

func encodeRecord(rec TaskRecord, expiry time.Time) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode task record: %w", err)
	}
	buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	return append(buf, payload...), nil
}

// decodeRecord returns the record if value is well formed and not expired at now.
func decodeRecord(value []byte, now time.Time) (TaskRecord, bool) {
	expiry, ok := decodeExpiry(value)
	if !ok || !expiry.After(now) {
		return TaskRecord{}, false
	}
	var rec TaskRecord
	if err := json.Unmarshal(value[expiryValueBytes:], &rec); err != nil {
		return TaskRecord{}, false
	}
	return rec, true
}

// decodeExpiry decodes the expiry time from the stored byte slice prefix.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
