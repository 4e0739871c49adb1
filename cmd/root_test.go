package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskflow/internal/config"
	"github.com/nibzard/taskflow/internal/task"
)

// workspace runs the test inside an empty project directory with an empty
// home and no taskflow variables set.
func workspace(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{
		config.EnvTaskFile, config.EnvExportFile, config.EnvExportFormat, config.EnvTemplate,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvLogTimestamps, config.EnvLogCaller,
		config.EnvColor,
	} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvNoColor, "1")

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// mustRun runs a command that is expected to succeed and returns stdout.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := run(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return out
}

func readTasks(t *testing.T, dir string) []task.Task {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, task.DefaultFile))
	require.NoError(t, err)
	var doc task.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc.Tasks
}

func TestHelpAndVersion(t *testing.T) {
	workspace(t)

	out := mustRun(t)
	assert.Contains(t, out, "TaskFlow - Smart CLI Todo & Project Manager")
	assert.Contains(t, out, "taskflow add \"Fix login bug\"")

	out = mustRun(t, "--version")
	assert.Equal(t, "taskflow version dev\n", out)

	out = mustRun(t, "version")
	assert.Equal(t, "taskflow version dev\n", out)
}

func TestUnknownCommandFails(t *testing.T) {
	workspace(t)
	_, _, err := run(t, "frobnicate")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "init")
	assert.Equal(t, "[OK] TaskFlow initialized!\n"+
		"   Task file: .taskflow.json\n"+
		"\n[TIP] Quick start:\n"+
		"   taskflow add \"My first task\"\n"+
		"   taskflow list\n", out)
	assert.Empty(t, readTasks(t, dir))

	out = mustRun(t, "init")
	assert.Equal(t, "[OK] TaskFlow already initialized in this directory\n", out)
}

func TestAddAndList(t *testing.T) {
	dir := workspace(t)

	assert.Equal(t, "[OK] Task added: [1] Write docs\n", mustRun(t, "add", "Write", "docs", "--priority", "low"))
	assert.Equal(t, "[OK] Task added: [2] Fix login\n",
		mustRun(t, "add", "Fix login", "-p", "high", "--tags", "bug, urgent", "--due", "2020-01-01"))
	mustRun(t, "add", "Deploy")

	tasks := readTasks(t, dir)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"bug", "urgent"}, tasks[1].Tags)
	assert.Equal(t, "2020-01-01", tasks[1].Due())
	assert.Equal(t, task.PriorityMedium, tasks[2].Priority)

	out := mustRun(t, "list")
	assert.Equal(t, "\n[TASKS] TaskFlow - 3 task(s)\n\n"+
		"[ ] [!] [2] Fix login [!] OVERDUE\n"+
		"[ ] [~] [3] Deploy\n"+
		"[ ] [-] [1] Write docs\n"+
		"\n"+
		"[STATS] Summary:\n"+
		"   [ ] Todo: 3\n", out)

	out = mustRun(t, "list", "--tag", "bug", "--details")
	assert.Contains(t, out, "TaskFlow - 1 task(s)")
	assert.Contains(t, out, "    Priority: high | Status: todo\n")
	assert.Contains(t, out, "    Tags: bug, urgent\n")
	assert.Contains(t, out, "    Due: 2020-01-01 (")
}

func TestAddRejectsInvalidInputWithoutFailing(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "add", "x", "--priority", "urgent")
	assert.Contains(t, out, "[X] invalid priority")

	out = mustRun(t, "add", "   ")
	assert.Contains(t, out, "[X] title required")

	_, err := os.Stat(filepath.Join(dir, task.DefaultFile))
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestAddWarnsOnUnrecognizedDue(t *testing.T) {
	workspace(t)
	out := mustRun(t, "add", "Someday", "--due", "next week")
	assert.Contains(t, out, "[OK] Task added: [1] Someday\n")
	assert.Contains(t, out, `[!] Due date "next week" is not a recognized date`)
}

func TestListEmptyAndFilters(t *testing.T) {
	workspace(t)

	assert.Equal(t, "[INFO] No tasks found\n", mustRun(t, "list"))
	assert.Equal(t, "", mustRun(t, "--quiet", "list"))

	mustRun(t, "add", "a")
	assert.Equal(t, "[INFO] No tasks found\n", mustRun(t, "list", "--status", "done"))
	assert.Contains(t, mustRun(t, "list", "--status", "bogus"), "[X] invalid status")
}

func TestTransitions(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "add", "Ship it")

	tests := []struct {
		args   []string
		want   string
		status task.Status
	}{
		{[]string{"start", "1"}, "[>] Task started: [1] Ship it\n", task.StatusInProgress},
		{[]string{"block", "1"}, "[#] Task blocked: [1] Ship it\n", task.StatusBlocked},
		{[]string{"done", "1"}, "[OK] Task completed: [1] Ship it\n", task.StatusDone},
		{[]string{"reopen", "1"}, "[ ] Task reopened: [1] Ship it\n", task.StatusTodo},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			assert.Equal(t, tt.want, mustRun(t, tt.args...))
			assert.Equal(t, tt.status, readTasks(t, dir)[0].Status)
		})
	}
}

func TestNotFoundExitsCleanly(t *testing.T) {
	workspace(t)
	mustRun(t, "add", "only")

	for _, name := range []string{"done", "start", "block", "reopen", "delete", "edit"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "[X] Task 42 not found\n", mustRun(t, name, "42", "--quiet"))
		})
	}
}

func TestInvalidIDIsUsageError(t *testing.T) {
	workspace(t)
	_, _, err := run(t, "done", "abc")
	assert.ErrorContains(t, err, `invalid task id "abc"`)
}

func TestDelete(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "add", "a")
	mustRun(t, "add", "b")

	assert.Equal(t, "[DEL] Task deleted: [1] a\n", mustRun(t, "delete", "1"))
	tasks := readTasks(t, dir)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].ID)

	assert.Equal(t, "[OK] Task added: [3] c\n", mustRun(t, "add", "c"))
}

func TestEdit(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "add", "Draft", "--tags", "a", "--due", "2030-01-01")

	assert.Equal(t, "[!] No changes specified\n", mustRun(t, "edit", "1"))

	out := mustRun(t, "edit", "1", "--title", "Final", "--priority", "high", "--status", "in-progress", "--tags", "x,y")
	assert.Equal(t, "[EDIT] Task updated: [1] Final\n", out)

	got := readTasks(t, dir)[0]
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Equal(t, "2030-01-01", got.Due())

	mustRun(t, "edit", "1", "--clear-due")
	assert.False(t, readTasks(t, dir)[0].HasDueDate())

	assert.Contains(t, mustRun(t, "edit", "1", "--title", " "), "[X] title required")
	assert.Equal(t, "Final", readTasks(t, dir)[0].Title)

	_, _, err := run(t, "edit", "1", "--due", "2031-01-01", "--clear-due")
	assert.Error(t, err)
}

func TestEditRejectsEmptyPriorityAndStatus(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "add", "Draft", "--priority", "low")

	assert.Contains(t, mustRun(t, "edit", "1", "--priority", ""), "[X] invalid priority")
	assert.Contains(t, mustRun(t, "edit", "1", "--status", ""), "[X] invalid status")

	got := readTasks(t, dir)[0]
	assert.Equal(t, task.PriorityLow, got.Priority)
	assert.Equal(t, task.StatusTodo, got.Status)
}

func TestExportFormats(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "add", "Write docs", "--tags", "docs")

	out := mustRun(t, "export")
	assert.Equal(t, "[OK] Tasks exported to: TASKS.md\n", out)
	md, err := os.ReadFile(filepath.Join(dir, "TASKS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Total Tasks:** 1")
	assert.Contains(t, string(md), "### [~] [1] Write docs")

	out = mustRun(t, "export", "--output", "tasks.yaml", "--format", "yaml")
	assert.Equal(t, "[OK] Tasks exported to: tasks.yaml\n", out)
	data, err := os.ReadFile(filepath.Join(dir, "tasks.yaml"))
	require.NoError(t, err)
	var snap struct {
		Total int `yaml:"total"`
		Tasks []struct {
			Title string `yaml:"title"`
		} `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, "Write docs", snap.Tasks[0].Title)

	mustRun(t, "export", "-o", "tasks.json", "--format", "json")
	data, err = os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	var doc task.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Tasks, 1)
}

func TestExportFailureExitsCleanly(t *testing.T) {
	workspace(t)
	out := mustRun(t, "export", "--output", filepath.Join("missing", "dir", "TASKS.md"))
	assert.True(t, strings.HasPrefix(out, "[X] Export failed: "), out)

	out = mustRun(t, "export", "--format", "pdf")
	assert.Contains(t, out, "[X] Export failed: unknown export format")
}

func TestExportUsesConfig(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.tmpl"), []byte("{{.Total}} tasks\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskflow.toml"), []byte(`
export_file = "out/report.md"
template = "report.tmpl"
`), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0755))
	mustRun(t, "add", "a")

	assert.Equal(t, "[OK] Tasks exported to: "+filepath.Join("out", "report.md")+"\n", mustRun(t, "export"))
	data, err := os.ReadFile(filepath.Join(dir, "out", "report.md"))
	require.NoError(t, err)
	assert.Equal(t, "1 tasks\n", string(data))
}

func TestStats(t *testing.T) {
	workspace(t)
	assert.Equal(t, "[INFO] No tasks yet\n", mustRun(t, "stats"))

	mustRun(t, "add", "a", "-p", "high", "--due", "2020-01-01")
	mustRun(t, "add", "b")
	mustRun(t, "done", "2")

	out := mustRun(t, "stats")
	assert.Contains(t, out, "Total Tasks: 2\n")
	assert.Contains(t, out, "  [ ] Todo: 1 (50.0%)\n")
	assert.Contains(t, out, "  [X] Done: 1 (50.0%)\n")
	assert.Contains(t, out, "  [-] Low: 0 (0.0%)\n")
	assert.Contains(t, out, "[!] Overdue: 1\n")
}

func TestFileFlagAndEnv(t *testing.T) {
	dir := workspace(t)

	mustRun(t, "--file", "other.json", "add", "flagged")
	_, err := os.Stat(filepath.Join(dir, "other.json"))
	require.NoError(t, err)

	t.Setenv(config.EnvTaskFile, "env.json")
	mustRun(t, "add", "from env")
	_, err = os.Stat(filepath.Join(dir, "env.json"))
	assert.NoError(t, err)
}

func TestMalformedFileWarnsAndStartsEmpty(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, task.DefaultFile), []byte("{oops"), 0644))

	out, stderr, err := run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "[INFO] No tasks found\n", out)
	assert.Contains(t, stderr, "Could not load tasks")
}

func TestSaveFailureExitsCleanly(t *testing.T) {
	dir := workspace(t)
	// A directory in place of the task file makes every save fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tasks"), 0755))

	out := mustRun(t, "--file", "tasks", "add", "lost")
	assert.True(t, strings.HasPrefix(out, "[X] Error saving tasks: "), out)
	assert.NotContains(t, out, "Task added")
}

func TestDoctor(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "doctor")
	assert.Contains(t, out, "[!] Not found (run: taskflow init)")
	assert.Contains(t, out, "[OK] All checks passed!")

	mustRun(t, "add", "ok", "--due", "soon")
	out = mustRun(t, "doctor", "--verbose")
	assert.Contains(t, out, "[OK] Valid (1 tasks)")
	assert.Contains(t, out, `unrecognized date "soon"`)
	assert.Contains(t, out, "- [todo] 1: ok")

	require.NoError(t, os.WriteFile(filepath.Join(dir, task.DefaultFile), []byte(`{"tasks":[{"id":1,"title":"a","priority":"urgent","status":"todo","created":"2025-01-01T00:00:00Z","updated":"2025-01-01T00:00:00Z"}]}`), 0644))
	out, _, err := run(t, "doctor")
	assert.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, out, "[X] Validation failed:")
}

func TestConfigCommand(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskflow.toml"), []byte(`export_format = "yaml"`), 0644))

	out := mustRun(t, "config", "--log-level", "debug")
	assert.Contains(t, out, filepath.Join(dir, "taskflow.toml"))
	assert.Regexp(t, `export_format\s+= yaml\s+\(project file\)`, out)
	assert.Regexp(t, `log_level\s+= debug\s+\(flag\)`, out)
	assert.Regexp(t, `color\s+= false\s+\(environment\)`, out)

	out = mustRun(t, "config", "--example")
	assert.Equal(t, config.ExampleConfig(), out)
}

func TestInvalidConfigIsAnError(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskflow.toml"), []byte(`export_format = "pdf"`), 0644))

	_, _, err := run(t, "list")
	assert.ErrorContains(t, err, "loading config")
}

func TestBoardNeedsTerminal(t *testing.T) {
	workspace(t)
	out := mustRun(t, "board")
	assert.Contains(t, out, "[X] The board needs an interactive terminal")
}
