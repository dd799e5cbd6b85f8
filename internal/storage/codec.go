package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Burbitskaya/task-manager-app/internal/task"
)

// isoLayout is ISO-8601 in UTC with millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the wire shape of one task under the collection key.
type record struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Location      string      `json:"location"`
	ExecutionDate string      `json:"executionDate"`
	Status        task.Status `json:"status"`
	CreatedAt     string      `json:"createdAt"`
}

// normalizeTime reduces t to what survives a round trip through the wire
// format: UTC, millisecond precision, no monotonic reading.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func encodeTasks(tasks []task.Task) (string, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, record{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Location:      t.Location,
			ExecutionDate: formatTime(t.ExecutionDate),
			Status:        t.Status,
			CreatedAt:     formatTime(t.CreatedAt),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return string(data), nil
}

// decodeTasks parses a stored collection. A blank value is an empty
// collection.
func decodeTasks(value string) ([]task.Task, error) {
	if strings.TrimSpace(value) == "" {
		return []task.Task{}, nil
	}
	var records []record
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("task %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("task %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
		if !r.Status.Valid() {
			return nil, fmt.Errorf("task %s: unknown status %q", r.ID, r.Status)
		}
		execAt, err := time.Parse(time.RFC3339, r.ExecutionDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: executionDate: %w", r.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("task %s: createdAt: %w", r.ID, err)
		}
		tasks = append(tasks, task.Task{
			ID:            r.ID,
			Title:         r.Title,
			Description:   r.Description,
			Location:      r.Location,
			ExecutionDate: execAt.UTC(),
			Status:        r.Status,
			CreatedAt:     createdAt.UTC(),
		})
	}
	return tasks, nil
}
