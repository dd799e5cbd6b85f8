package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Burbitskaya/task-manager-app/internal/config"
	"github.com/Burbitskaya/task-manager-app/internal/storage"
	"github.com/Burbitskaya/task-manager-app/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeStatus
	modeConfirmDelete
)

// dataChangedMsg is sent when the backing data was modified outside this
// program.
type dataChangedMsg struct{}

// pickerStatuses is the order statuses are offered in, 1 to 4.
var pickerStatuses = []task.Status{
	task.StatusPending,
	task.StatusInProgress,
	task.StatusCompleted,
	task.StatusCancelled,
}

type formState struct {
	values [4]string
	index  int
}

func formFields() []string {
	return []string{"title", "description", "location", "execution date (" + task.DateInputLayout + ")"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

type Model struct {
	store     *storage.Store
	cfg       config.Config
	validator task.Validator
	now       func() time.Time
	loc       *time.Location
	logger    *slog.Logger
	changes   <-chan struct{}

	tasks     []task.Task
	sort      task.SortConfig
	selection task.Selection
	cursor    int
	mode      mode
	input     textinput.Model
	form      *formState
	pick      int
	status    string
}

type Option func(*Model)

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
		m.validator.Now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(m *Model) { m.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithChanges makes the model reload whenever a value arrives on ch.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// New builds the model and loads the collection once. A load failure is
// shown in the status line and the list starts empty.
func New(ctx context.Context, store *storage.Store, cfg config.Config, opts ...Option) Model {
	ti := textinput.New()
	ti.CharLimit = task.MaxDescriptionLen
	ti.Width = 40

	m := Model{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		loc:    time.Local,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sort:   cfg.SortConfig(),
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to change status, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Status, cfg.Keys.Delete),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.reload(ctx)
	return m
}

func Run(ctx context.Context, store *storage.Store, cfg config.Config, opts ...Option) error {
	m := New(ctx, store, cfg, opts...)
	program := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return dataChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case dataChangedMsg:
		if m.mode == modeList {
			m.reload(context.Background())
		}
		return m, waitForChange(m.changes)
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeStatus:
		return m.updateStatusMode(key)
	case modeConfirmDelete:
		return m.updateDeleteConfirm(key)
	default:
		return m.updateListMode(key)
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case k.Add:
		return m.startForm()
	case k.Status:
		if !m.canAct() {
			return m, nil
		}
		m.mode = modeStatus
		m.pick = 0
		if t, ok := m.current(); ok && !m.selection.Active() {
			m.pick = max(slices.Index(pickerStatuses, t.Status), 0)
		}
		m.status = "Pick a status: j/k and enter, or 1-4. Esc to cancel."
	case k.Delete:
		if !m.canAct() {
			return m, nil
		}
		m.mode = modeConfirmDelete
		if m.selection.Active() {
			m.status = fmt.Sprintf("Delete %d selected tasks? y/n", m.selection.Len())
		} else {
			t, _ := m.current()
			m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
		}
	case k.Select:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.selection.Active() {
			m.selection.Toggle(t.ID)
		} else {
			m.selection.Enter(t.ID)
		}
		m.status = m.selectionStatus()
	case k.Toggle:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if !m.selection.Active() {
			m.status = fmt.Sprintf("Press '%s' to start selecting", k.Select)
			return m, nil
		}
		m.selection.Toggle(t.ID)
		m.status = m.selectionStatus()
	case k.Cancel:
		if m.selection.Active() {
			m.selection.Cancel()
			m.status = "Selection cleared"
		}
	case k.SortDate:
		m.applySort(m.sort.Toggle(task.SortByDate))
	case k.SortStatus:
		m.applySort(m.sort.Toggle(task.SortByStatus))
	case k.Reload:
		if m.reload(context.Background()) {
			m.status = fmt.Sprintf("Loaded %d tasks", len(m.tasks))
		}
	}
	return m, nil
}

// canAct reports whether a status change or delete has a target. An active
// but empty selection is refused.
func (m *Model) canAct() bool {
	if m.selection.Active() {
		if m.selection.IsEmpty() {
			m.status = "No tasks selected"
			return false
		}
		return true
	}
	if _, ok := m.current(); !ok {
		m.status = "No tasks"
		return false
	}
	return true
}

func (m Model) selectionStatus() string {
	return fmt.Sprintf("%d selected • %s toggle • %s clear", m.selection.Len(), keyLabel(m.cfg.Keys.Toggle), m.cfg.Keys.Cancel)
}

func (m Model) startForm() (tea.Model, tea.Cmd) {
	m.form = &formState{}
	m.mode = modeAdd
	m.input.SetValue("")
	m.input.Placeholder = m.form.currentLabel()
	m.input.Focus()
	m.status = m.formPrompt()
	return m, textinput.Blink
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel:
		m.form = nil
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Cancelled"
		return m, nil
	case k.NextField:
		m.moveField(1)
		return m, nil
	case k.PrevField:
		m.moveField(-1)
		return m, nil
	case k.Confirm:
		m.form.values[m.form.index] = m.input.Value()
		if m.form.index < len(formFields())-1 {
			m.moveField(1)
			return m, nil
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.values[m.form.index] = m.input.Value()
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.values[m.form.index])
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
	m.status = m.formPrompt()
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("New task: %s (field %d of %d). Enter to advance, %s/%s to move, %s to cancel.",
		m.form.currentLabel(), m.form.index+1, len(formFields()), m.cfg.Keys.NextField, m.cfg.Keys.PrevField, m.cfg.Keys.Cancel)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	v := m.form.values
	at, dateErr := task.ParseExecutionDate(v[3], m.loc)
	d, err := m.validator.Validate(task.Draft{
		Title:         v[0],
		Description:   v[1],
		Location:      v[2],
		ExecutionDate: at,
	})
	if err != nil {
		var verr *task.ValidationError
		if errors.As(err, &verr) && verr.Rule == task.RuleExecutionDatePast && dateErr != nil {
			m.status = errorStyle.Render("Execution date: " + dateErr.Error())
		} else {
			m.status = errorStyle.Render(err.Error())
		}
		m.focusField(fieldIndex(err))
		return m, nil
	}

	created, err := m.store.Create(context.Background(), d)
	if err != nil {
		m.logger.Error("create task", "error", err)
		m.status = errorStyle.Render(fmt.Sprintf("failed to save: %v", err))
		return m, nil
	}
	m.form = nil
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.showCache(created.ID)
	m.status = fmt.Sprintf("Added \"%s\"", created.Title)
	return m, nil
}

func (m *Model) focusField(idx int) {
	if m.form == nil || idx < 0 || idx == m.form.index {
		return
	}
	m.form.index = idx
	m.input.SetValue(m.form.values[idx])
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
}

func fieldIndex(err error) int {
	var verr *task.ValidationError
	if !errors.As(err, &verr) {
		return -1
	}
	switch verr.Field {
	case "title":
		return 0
	case "description":
		return 1
	case "location":
		return 2
	case "executionDate":
		return 3
	default:
		return -1
	}
}

func (m Model) updateStatusMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel:
		m.mode = modeList
		m.status = "Cancelled"
	case k.Down, "down":
		m.pick = wrapIndex(m.pick+1, len(pickerStatuses))
	case k.Up, "up":
		m.pick = wrapIndex(m.pick-1, len(pickerStatuses))
	case k.Confirm:
		return m.applyStatus(pickerStatuses[m.pick])
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(pickerStatuses) {
			return m.applyStatus(pickerStatuses[n-1])
		}
	}
	return m, nil
}

func (m Model) applyStatus(status task.Status) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	m.mode = modeList

	if m.selection.Active() {
		n, err := m.store.BulkUpdateStatus(ctx, m.selection.IDs(), status)
		if err != nil {
			m.logger.Error("bulk update status", "error", err)
			m.status = errorStyle.Render(fmt.Sprintf("failed to update: %v", err))
			return m, nil
		}
		m.selection.Cancel()
		m.showCache(m.currentID())
		m.status = fmt.Sprintf("Marked %d tasks %s", n, status.Label())
		return m, nil
	}

	t, ok := m.current()
	if !ok {
		return m, nil
	}
	updated, err := m.store.UpdateStatus(ctx, t.ID, status)
	if err != nil {
		m.logger.Error("update status", "id", t.ID, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			m.status = errorStyle.Render("failed to update: task no longer exists")
			m.showCache("")
		} else {
			m.status = errorStyle.Render(fmt.Sprintf("failed to update: %v", err))
		}
		return m, nil
	}
	m.showCache(updated.ID)
	m.status = fmt.Sprintf("\"%s\" is now %s", updated.Title, status.Label())
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		return m.applyDelete()
	case "n", "N", m.cfg.Keys.Cancel:
		m.mode = modeList
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m Model) applyDelete() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	m.mode = modeList

	if m.selection.Active() {
		n, err := m.store.DeleteMany(ctx, m.selection.IDs())
		if err != nil {
			m.logger.Error("bulk delete", "error", err)
			m.status = errorStyle.Render(fmt.Sprintf("failed to delete: %v", err))
			return m, nil
		}
		m.selection.Cancel()
		m.showCache("")
		m.status = fmt.Sprintf("Deleted %d tasks", n)
		return m, nil
	}

	t, ok := m.current()
	if !ok {
		m.status = "Nothing to delete"
		return m, nil
	}
	if err := m.store.DeleteOne(ctx, t.ID); err != nil {
		m.logger.Error("delete task", "id", t.ID, "error", err)
		m.status = errorStyle.Render(fmt.Sprintf("failed to delete: %v", err))
		return m, nil
	}
	m.showCache("")
	m.status = "Deleted task"
	return m, nil
}

// reload reads the collection from the store. On failure the current list
// stays on screen.
func (m *Model) reload(ctx context.Context) bool {
	if _, err := m.store.LoadAll(ctx); err != nil {
		m.logger.Error("load tasks", "error", err)
		m.status = errorStyle.Render(fmt.Sprintf("failed to load: %v", err))
		return false
	}
	m.showCache(m.currentID())
	return true
}

// showCache re-sorts the store's cached collection and puts the cursor on
// keepID when it is still present.
func (m *Model) showCache(keepID string) {
	m.tasks = task.Sort(m.store.Tasks(), m.sort)
	m.placeCursor(keepID)
}

func (m *Model) applySort(cfg task.SortConfig) {
	m.sort = cfg
	m.showCache(m.currentID())
	m.status = "Sorted by " + cfg.String()
}

func (m *Model) placeCursor(id string) {
	if id != "" {
		if i := slices.IndexFunc(m.tasks, func(t task.Task) bool { return t.ID == id }); i >= 0 {
			m.cursor = i
			return
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) current() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) currentID() string {
	t, _ := m.current()
	return t.ID
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d • sort: %s", len(m.tasks), m.sort)))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	switch m.mode {
	case modeAdd:
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case modeStatus:
		b.WriteString(m.renderPicker())
	default:
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s status • %s delete • %s select • %s/%s sort date/status • %s reload • %s quit",
		k.Up, k.Down, k.Add, k.Status, k.Delete, k.Select, k.SortDate, k.SortStatus, k.Reload, k.Quit)
}

func (m Model) renderTaskList() string {
	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = cursorStyle.Render(">")
		}

		check := ""
		if m.selection.Active() {
			check = "[ ] "
			if m.selection.Contains(t.ID) {
				check = "[x] "
			}
		}

		when := t.ExecutionDate.In(m.loc).Format(displayLayout)
		if t.Overdue(now) {
			when = overdueStyle.Render(when + " overdue")
		}

		title := t.Title
		if m.selection.Contains(t.ID) {
			title = selectedStyle.Render(title)
		}
		badge := statusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status.Label()))
		b.WriteString(fmt.Sprintf("%s %s%s %s  %s\n", cursor, check, badge, title, mutedStyle.Render(when)))
	}
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString("New task\n\n")
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := m.form.values[i]
		if i == m.form.index {
			val = m.input.Value()
		}
		b.WriteString(fmt.Sprintf("%s %-30s : %s\n", prefix, name, emptyPlaceholder(val)))
	}
	return b.String()
}

func (m Model) renderPicker() string {
	var b strings.Builder
	target := "selected tasks"
	if !m.selection.Active() {
		t, _ := m.current()
		target = fmt.Sprintf("\"%s\"", t.Title)
	}
	b.WriteString(fmt.Sprintf("Set status of %s\n\n", target))
	for i, s := range pickerStatuses {
		prefix := " "
		if i == m.pick {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %d %s\n", prefix, i+1, statusBadge(s)))
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Location    : %s\n", emptyPlaceholder(t.Location)))
	when := t.ExecutionDate.In(m.loc).Format(displayLayout)
	if t.Overdue(m.now()) {
		when += " " + overdueStyle.Render("(overdue)")
	}
	b.WriteString(fmt.Sprintf("When        : %s\n", when))
	b.WriteString(fmt.Sprintf("Status      : %s\n", statusBadge(t.Status)))
	b.WriteString(fmt.Sprintf("Created     : %s\n", t.CreatedAt.In(m.loc).Format(displayLayout)))
	b.WriteString(fmt.Sprintf("ID          : %s", mutedStyle.Render(t.ID)))
	return panelStyle.Render(b.String())
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
