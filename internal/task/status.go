package task

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// statusRank orders statuses for sorting only.
var statusRank = map[Status]int{
	StatusCompleted:  1,
	StatusInProgress: 2,
	StatusPending:    3,
	StatusCancelled:  4,
}

// Statuses returns every status in rank order.
func Statuses() []Status {
	return []Status{StatusCompleted, StatusInProgress, StatusPending, StatusCancelled}
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank is the sort weight of the status. Unknown statuses sort last.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank) + 1
}

// Label is the human-readable name shown in views.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// CanTransition reports whether a task may move from one status to another.
// Every move is allowed, including to the same status.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}

// ParseStatus accepts the wire value and a few spellings people type by hand.
func ParseStatus(v string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(v))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "inprogress", "progress":
		norm = string(StatusInProgress)
	case "canceled":
		norm = string(StatusCancelled)
	case "done":
		norm = string(StatusCompleted)
	}
	s := Status(norm)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q (want pending, in-progress, completed or cancelled)", v)
	}
	return s, nil
}
