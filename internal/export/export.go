// Package export renders a task collection as JSON, YAML or TOML for
// backups and scripting.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Burbitskaya/task-manager-app/internal/task"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type item struct {
	ID            string `json:"id" yaml:"id" toml:"id"`
	Title         string `json:"title" yaml:"title" toml:"title"`
	Description   string `json:"description" yaml:"description" toml:"description"`
	Location      string `json:"location" yaml:"location" toml:"location"`
	ExecutionDate string `json:"executionDate" yaml:"executionDate" toml:"executionDate"`
	Status        string `json:"status" yaml:"status" toml:"status"`
	CreatedAt     string `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
}

// document is the top level for YAML and TOML; TOML has no bare arrays.
type document struct {
	Tasks []item `yaml:"tasks" toml:"tasks"`
}

func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case JSON, YAML, TOML:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, yaml or toml)", v)
	}
}

// Write encodes tasks to w in the given format, keeping their order.
func Write(w io.Writer, tasks []task.Task, format Format) error {
	items := make([]item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, item{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Location:      t.Location,
			ExecutionDate: t.ExecutionDate.UTC().Format(timeLayout),
			Status:        string(t.Status),
			CreatedAt:     t.CreatedAt.UTC().Format(timeLayout),
		})
	}

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Tasks: items}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(document{Tasks: items})
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ParseTime reads back a timestamp written by Write.
func ParseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339, v)
}
