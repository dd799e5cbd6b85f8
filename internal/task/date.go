package task

import (
	"fmt"
	"strings"
	"time"
)

// DateInputLayout is the layout shown to users typing an execution date.
const DateInputLayout = "2006-01-02 15:04"

var dateLayouts = []string{
	time.RFC3339,
	DateInputLayout,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseExecutionDate reads a user-entered date. Layouts without a zone are
// interpreted in loc; a bare date means midnight.
func ParseExecutionDate(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("execution date is empty")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q: use %s or YYYY-MM-DD", v, DateInputLayout)
}
