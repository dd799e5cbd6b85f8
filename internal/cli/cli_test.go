package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Burbitskaya/task-manager-app/internal/storage"
	"github.com/Burbitskaya/task-manager-app/internal/task"
)

var cliNow = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func writeConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "backend = \"" + backend + "\"\nlog_file = \"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	a := &app{now: func() time.Time { return cliNow }, loc: time.UTC}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustAdd(t *testing.T, cfgPath, title, at string) string {
	t.Helper()
	out, err := run(t, cfgPath, "add", "-t", title, "-d", title+" details", "-l", "Home", "--at", at)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func listJSON(t *testing.T, cfgPath string, extra ...string) []map[string]any {
	t.Helper()
	out, err := run(t, cfgPath, append([]string{"list", "--json"}, extra...)...)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got
}

func TestAddAndList(t *testing.T) {
	cfg := writeConfig(t, "file")

	id := mustAdd(t, cfg, "Buy milk", "2030-06-03 18:00")
	assert.NotEmpty(t, id)
	mustAdd(t, cfg, "Call plumber", "2030-06-02")

	out, err := run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Call plumber")
	assert.Less(t, strings.Index(out, "Buy milk"), strings.Index(out, "Call plumber"), "date desc by default")

	got := listJSON(t, cfg, "--dir", "asc")
	require.Len(t, got, 2)
	assert.Equal(t, "Call plumber", got[0]["title"])
	assert.Equal(t, id, got[1]["id"])
	assert.Equal(t, "2030-06-03T18:00:00.000Z", got[1]["executionDate"])
	assert.Equal(t, "pending", got[1]["status"])
	assert.Equal(t, "2030-06-01T09:00:00.000Z", got[1]["createdAt"])
}

func TestList_Empty(t *testing.T) {
	out, err := run(t, writeConfig(t, "file"), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestList_BadSortFlag(t *testing.T) {
	_, err := run(t, writeConfig(t, "file"), "list", "--sort", "priority")
	assert.Error(t, err)
}

func TestAdd_ValidationErrors(t *testing.T) {
	cfg := writeConfig(t, "file")

	_, err := run(t, cfg, "add", "-d", "d", "-l", "l", "--at", "2030-07-01")
	var verr *task.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, task.RuleTitleRequired, verr.Rule)

	_, err = run(t, cfg, "add", "-t", "t", "-d", "d", "-l", "l", "--at", "2020-01-01")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, task.RuleExecutionDatePast, verr.Rule)

	_, err = run(t, cfg, "add", "-t", "t", "-d", "d", "-l", "l", "--at", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution date")

	_, err = run(t, cfg, "add", "-t", strings.Repeat("x", task.MaxTitleLen+1), "-d", "d", "-l", "l", "--at", "2030-07-01")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, task.RuleTitleTooLong, verr.Rule)

	assert.Empty(t, listJSON(t, cfg))
}

func TestStatus_SingleAndBulk(t *testing.T) {
	cfg := writeConfig(t, "file")
	a := mustAdd(t, cfg, "A", "2030-07-01")
	b := mustAdd(t, cfg, "B", "2030-07-02")
	c := mustAdd(t, cfg, "C", "2030-07-03")

	out, err := run(t, cfg, "status", "done", a)
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")

	out, err = run(t, cfg, "status", "in-progress", b, c, "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 2 of 3 tasks")

	statuses := map[string]any{}
	for _, tk := range listJSON(t, cfg) {
		statuses[tk["id"].(string)] = tk["status"]
	}
	assert.Equal(t, map[string]any{a: "completed", b: "in-progress", c: "in-progress"}, statuses)
}

func TestStatus_Errors(t *testing.T) {
	cfg := writeConfig(t, "file")
	id := mustAdd(t, cfg, "A", "2030-07-01")

	_, err := run(t, cfg, "status", "archived", id)
	assert.Error(t, err)

	_, err = run(t, cfg, "status", "completed", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = run(t, cfg, "status", "completed")
	assert.Error(t, err, "an id is required")
}

func TestRm(t *testing.T) {
	cfg := writeConfig(t, "file")
	a := mustAdd(t, cfg, "A", "2030-07-01")
	b := mustAdd(t, cfg, "B", "2030-07-02")
	c := mustAdd(t, cfg, "C", "2030-07-03")

	out, err := run(t, cfg, "rm", "missing")
	require.NoError(t, err, "deleting an unknown id is not an error")
	assert.Contains(t, out, "Deleted missing")

	out, err = run(t, cfg, "rm", a, c, "idX")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 tasks")

	got := listJSON(t, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0]["id"])
}

func TestExport(t *testing.T) {
	cfg := writeConfig(t, "file")
	mustAdd(t, cfg, "A", "2030-07-01")

	out, err := run(t, cfg, "export", "--format", "yaml")
	require.NoError(t, err)
	var doc struct {
		Tasks []map[string]string `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "A", doc.Tasks[0]["title"])

	out, err = run(t, cfg, "export", "-f", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[[tasks]]")

	_, err = run(t, cfg, "export", "-f", "csv")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	id := mustAdd(t, cfg, "Persisted", "2030-07-01")

	got := listJSON(t, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0]["id"])
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg), "tasks.db"))
}

func TestMalformedDataReportsLoadFailure(t *testing.T) {
	cfg := writeConfig(t, "file")
	dataDir := filepath.Join(filepath.Dir(cfg), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "tasks.json"), []byte("{oops"), 0o644))

	_, err := run(t, cfg, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")

	var readErr *storage.StorageReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestWatchPath(t *testing.T) {
	cfg := writeConfig(t, "file")
	a := &app{cfgFile: cfg, now: time.Now, loc: time.UTC}
	require.NoError(t, a.open())
	defer a.close()

	assert.Equal(t, filepath.Join(filepath.Dir(cfg), "data", "tasks.json"), a.watchPath())
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend = "redis"`), 0o644))

	_, err := run(t, path, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
