package kv

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	bolt "go.etcd.io/bbolt"
)

const maxTombstones = 1024

var (
	sessionBucket = []byte("session")

	ErrNotFound = errors.New("no job found for the given key")
	ErrStatus   = errors.New("job is not in the expected status")
)

// In-Memory Thread-Safe table of the live jobs, periodically persisted to bolt
// so unfinished transfers survive a restart.
type Store struct {
	db    *bolt.DB
	every time.Duration

	mu    sync.RWMutex
	table map[string]internal.MediaInfo
	dirty bool

	// keys deleted from the table, late snapshots for them are ignored
	// until a new preview arrives
	removed *lru.Cache[string, struct{}]
}

func NewStore(db *bolt.DB, flushEvery time.Duration) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	removed, err := lru.New[string, struct{}](maxTombstones)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		every:   flushEvery,
		table:   make(map[string]internal.MediaInfo),
		removed: removed,
	}, nil
}

func (s *Store) Get(key string) (internal.MediaInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.table[key]
	if !ok {
		return internal.MediaInfo{}, ErrNotFound
	}

	return entry, nil
}

func (s *Store) Set(info internal.MediaInfo) {
	s.mu.Lock()
	s.removed.Remove(info.Key())
	s.table[info.Key()] = info
	s.dirty = true
	s.mu.Unlock()
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.table, key)
	s.removed.Add(key, struct{}{})
	s.dirty = true
	s.mu.Unlock()
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Returns a snapshot of every live job ordered by key
func (s *Store) All() []internal.MediaInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]internal.MediaInfo, 0, len(s.table))
	for _, v := range s.table {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })

	return all
}

// Update applies a status snapshot. Snapshots that would move a job backwards
// are dropped, except Queued which marks a new submission. A job unknown to
// the table can only enter it by starting a new lifecycle.
func (s *Store) Update(info internal.MediaInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the preview entry is keyed by request id until the media id is known
	if info.Id != "" && info.RequestId != "" {
		delete(s.table, info.RequestId)
	}

	key := info.Key()
	prev, ok := s.table[key]

	switch {
	case info.Status == internal.StatusExtracting || info.Status == internal.StatusOk:
		s.removed.Remove(key)
	case s.removed.Contains(key):
		slog.Debug("late snapshot for removed job dropped", slog.String("key", key), slog.String("status", string(info.Status)))
		return false
	case !ok && info.Status != internal.StatusQueued && info.Status != internal.StatusError:
		slog.Debug("snapshot for unknown job dropped", slog.String("key", key), slog.String("status", string(info.Status)))
		return false
	}

	if ok && info.Status != internal.StatusQueued && !prev.Status.CanTransition(info.Status) {
		slog.Warn("illegal status transition dropped",
			slog.String("key", key),
			slog.String("from", string(prev.Status)),
			slog.String("to", string(info.Status)),
		)
		return false
	}

	s.table[key] = info
	s.dirty = true

	return true
}

// Claim moves the job from one status to another in a single step and
// returns the entry as it was before. Two callers racing for the same job
// cannot both succeed.
func (s *Store) Claim(key string, from, to internal.Status) (internal.MediaInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.table[key]
	if !ok {
		return internal.MediaInfo{}, ErrNotFound
	}
	if prev.Status != from {
		return prev, ErrStatus
	}

	next := prev
	next.Status = to
	s.table[key] = next
	s.dirty = true

	return prev, nil
}

func resumable(info internal.MediaInfo) bool {
	switch info.Status {
	case internal.StatusQueued, internal.StatusDownloading, internal.StatusConverting:
		return true
	case internal.StatusFinished:
		return info.Filetype == internal.Audio
	}
	return false
}

// Persist replaces the stored session with the resumable jobs of the table.
func (s *Store) Persist() error {
	s.mu.Lock()
	jobs := make([]internal.MediaInfo, 0, len(s.table))
	for _, v := range s.table {
		if resumable(v) {
			jobs = append(jobs, v)
		}
	}
	s.dirty = false
	s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(sessionBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}

		b, err := tx.CreateBucket(sessionBucket)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			data, err := json.Marshal(job)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(job.Key()), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Join(errors.New("failed to persist session"), err)
	}

	return nil
}

// Restore loads the persisted session into the table and hands every job to
// resume, which is expected to resubmit it.
func (s *Store) Restore(resume func(internal.MediaInfo)) error {
	var jobs []internal.MediaInfo

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var job internal.MediaInfo
			if err := json.Unmarshal(v, &job); err != nil {
				slog.Warn("skipping corrupted session entry", slog.String("key", string(k)), slog.Any("err", err))
				return nil
			}
			jobs = append(jobs, job)
			return nil
		})
	})
	if err != nil {
		return err
	}

	for _, job := range jobs {
		s.Set(job)
		slog.Info("restoring job", slog.String("id", job.Id), slog.String("status", string(job.Status)))
		resume(job)
	}

	return nil
}

// Run flushes the table every flushEvery while it has changes, and once more
// when the context is done.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.Persist()
		case <-ticker.C:
			s.mu.RLock()
			dirty := s.dirty
			s.mu.RUnlock()

			if !dirty {
				continue
			}
			if err := s.Persist(); err != nil {
				slog.Error("session flush failed", slog.Any("err", err))
			}
		}
	}
}
