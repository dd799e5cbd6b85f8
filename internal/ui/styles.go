package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Burbitskaya/task-manager-app/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// statusColors follow the usual warning/info/success/danger palette.
var statusColors = map[task.Status]lipgloss.Color{
	task.StatusPending:    lipgloss.Color("11"),
	task.StatusInProgress: lipgloss.Color("12"),
	task.StatusCompleted:  lipgloss.Color("10"),
	task.StatusCancelled:  lipgloss.Color("9"),
}

func statusStyle(s task.Status) lipgloss.Style {
	c, ok := statusColors[s]
	if !ok {
		return mutedStyle
	}
	return lipgloss.NewStyle().Foreground(c)
}

func statusBadge(s task.Status) string {
	return statusStyle(s).Render(s.Label())
}
