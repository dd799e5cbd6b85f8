package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Burbitskaya/task-manager-app/internal/task"
)

const displayLayout = "2006-01-02 15:04"

// RenderTable draws tasks as a bordered table in the order given. Dates are
// shown in loc, or local time when loc is nil.
func RenderTable(tasks []task.Task, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := t.ExecutionDate.In(loc).Format(displayLayout)
		if t.Overdue(now) {
			due += " !"
		}
		rows = append(rows, []string{t.ID, t.Title, t.Location, due, t.Status.Label()})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "LOCATION", "WHEN", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(tasks) {
				return cellStyle.Foreground(statusColors[tasks[row].Status])
			}
			return cellStyle
		})
	return tbl.String()
}
