// Package storage is the single owner of the task collection. Every
// mutation reads the whole collection from the backing store, applies the
// change to a copy and writes the whole collection back once.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Burbitskaya/task-manager-app/internal/kv"
	"github.com/Burbitskaya/task-manager-app/internal/task"
)

const (
	DefaultKey = "tasks"

	maxIDAttempts = 8
)

// Store serializes all operations through one mutex, so concurrent callers
// cannot lose each other's writes.
type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	key    string
	now    func() time.Time
	newID  func() (string, error)
	logger *slog.Logger

	// tasks is the last collection read from or written to the backing
	// store.
	tasks []task.Task
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		key:    DefaultKey,
		now:    time.Now,
		newID:  task.NewID,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tasks:  []task.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns a copy of the cached collection without touching the
// backing store.
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// LoadAll reads the whole collection and refreshes the cache. A key that
// was never written is an empty collection. On failure the cache keeps its
// previous value.
func (s *Store) LoadAll(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.tasks = tasks
	s.logger.Debug("tasks loaded", "count", len(tasks))
	return slices.Clone(tasks), nil
}

// Create appends a task built from an already validated draft. The new task
// starts pending with CreatedAt set to now.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return task.Task{}, err
	}

	id, err := s.uniqueID(current)
	if err != nil {
		return task.Task{}, err
	}
	t := task.Task{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		ExecutionDate: normalizeTime(d.ExecutionDate),
		Status:        task.StatusPending,
		CreatedAt:     normalizeTime(s.now()),
	}

	next := append(slices.Clone(current), t)
	if err := s.write(ctx, "create", next); err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("task created", "id", t.ID, "count", len(next))
	return t, nil
}

// UpdateStatus sets the status of one task. Any status may follow any
// other. ErrNotFound is returned for an unknown id.
func (s *Store) UpdateStatus(ctx context.Context, id string, status task.Status) (task.Task, error) {
	if !status.Valid() {
		return task.Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return task.Task{}, err
	}
	idx := slices.IndexFunc(current, func(t task.Task) bool { return t.ID == id })
	if idx < 0 {
		return task.Task{}, fmt.Errorf("task with ID '%s': %w", id, ErrNotFound)
	}

	next := slices.Clone(current)
	from := next[idx].Status
	if !task.CanTransition(from, status) {
		return task.Task{}, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, from, status)
	}
	next[idx].Status = status
	if err := s.write(ctx, "update status", next); err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("task status updated", "id", id, "from", from, "to", status)
	return next[idx], nil
}

// BulkUpdateStatus sets status on every task whose id is in ids. Unknown ids
// are ignored. It returns how many tasks the update was applied to.
func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status task.Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	want := idSet(ids)
	next := slices.Clone(current)
	count := 0
	for i := range next {
		if _, ok := want[next[i].ID]; ok {
			next[i].Status = status
			count++
		}
	}
	if err := s.write(ctx, "bulk update status", next); err != nil {
		return 0, err
	}
	s.logger.Debug("task statuses updated", "requested", len(want), "updated", count, "to", status)
	return count, nil
}

// DeleteOne removes the task with id. An unknown id is not an error.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	_, err := s.deleteIDs(ctx, "delete", []string{id})
	return err
}

// DeleteMany removes every task whose id is in ids and returns how many were
// removed.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "bulk delete", ids)
}

func (s *Store) deleteIDs(ctx context.Context, op string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	drop := idSet(ids)
	next := slices.DeleteFunc(slices.Clone(current), func(t task.Task) bool {
		_, ok := drop[t.ID]
		return ok
	})
	removed := len(current) - len(next)
	if err := s.write(ctx, op, next); err != nil {
		return 0, err
	}
	s.logger.Debug("tasks deleted", "op", op, "requested", len(drop), "removed", removed)
	return removed, nil
}

// read must be called with mu held.
func (s *Store) read(ctx context.Context) ([]task.Task, error) {
	value, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read tasks", "key", s.key, "error", err)
		return nil, &StorageReadError{Key: s.key, Err: err}
	}
	if !ok {
		return []task.Task{}, nil
	}
	tasks, err := decodeTasks(value)
	if err != nil {
		s.logger.Warn("stored tasks are malformed", "key", s.key, "error", err)
		return nil, &StorageReadError{Key: s.key, Err: err}
	}
	return tasks, nil
}

// write persists next and, only on success, makes it the cached collection.
// It must be called with mu held.
func (s *Store) write(ctx context.Context, op string, next []task.Task) error {
	value, err := encodeTasks(next)
	if err == nil {
		err = s.kv.Set(ctx, s.key, value)
	}
	if err != nil {
		s.logger.Warn("failed to save tasks", "op", op, "key", s.key, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	s.tasks = next
	return nil
}

func (s *Store) uniqueID(existing []task.Task) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t.ID] = struct{}{}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generate task id: %w", err)
		}
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
	}
	return "", errors.New("generate task id: no unique id after retries")
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
