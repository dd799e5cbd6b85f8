// Package task holds the task model and the pure logic around it: status
// policy, draft validation, ordering and multi-select state.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Field limits, counted in runes.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MaxLocationLen    = 200
)

// Task is the single persisted entity. Only Status changes after creation.
type Task struct {
	ID            string
	Title         string
	Description   string
	Location      string
	ExecutionDate time.Time
	Status        Status
	CreatedAt     time.Time
}

// Draft is the user input for a new task. A Draft returned by
// Validator.Validate is trimmed and safe to hand to the store.
type Draft struct {
	Title         string    `validate:"required,max=100"`
	Description   string    `validate:"required,max=500"`
	Location      string    `validate:"required,max=200"`
	ExecutionDate time.Time `validate:"-"`
}

// Overdue reports whether the task is still open past its execution date.
// It is derived on read and never stored.
func (t Task) Overdue(now time.Time) bool {
	if t.Status != StatusPending && t.Status != StatusInProgress {
		return false
	}
	return t.ExecutionDate.Before(now)
}

// NewID returns a time-ordered UUIDv7. The millisecond timestamp is followed
// by a monotonic sequence and random bits, so ids minted within the same
// millisecond still differ.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
