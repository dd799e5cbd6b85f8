package task

import (
	"fmt"
	"slices"
	"strings"
)

type SortField string

const (
	SortByDate   SortField = "date"
	SortByStatus SortField = "status"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig is the active ordering of a view. It is never persisted.
type SortConfig struct {
	Field     SortField
	Direction Direction
}

// DefaultSort is the ordering a fresh view starts with.
var DefaultSort = SortConfig{Field: SortByDate, Direction: Desc}

func (c SortConfig) String() string {
	return fmt.Sprintf("%s %s", c.Field, c.Direction)
}

// Toggle returns the config after the user picks field: the active field
// flips direction, any other field starts descending.
func (c SortConfig) Toggle(field SortField) SortConfig {
	if c.Field == field {
		if c.Direction == Asc {
			return SortConfig{Field: field, Direction: Desc}
		}
		return SortConfig{Field: field, Direction: Asc}
	}
	return SortConfig{Field: field, Direction: Desc}
}

// Sort returns a new slice ordered by cfg. The input is not modified and
// tasks with equal keys keep their input order.
func Sort(tasks []Task, cfg SortConfig) []Task {
	out := slices.Clone(tasks)
	cmp := compareByDate
	if cfg.Field == SortByStatus {
		cmp = compareByStatus
	}
	if cfg.Direction == Desc {
		asc := cmp
		cmp = func(a, b Task) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func compareByDate(a, b Task) int {
	return a.ExecutionDate.Compare(b.ExecutionDate)
}

func compareByStatus(a, b Task) int {
	return a.Status.Rank() - b.Status.Rank()
}

func ParseSortField(v string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(v))); f {
	case SortByDate, SortByStatus:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q (want date or status)", v)
	}
}

func ParseDirection(v string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(v))); d {
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", v)
	}
}
