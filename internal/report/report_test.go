package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskflow/internal/task"
)

var now = time.Date(2025, 3, 1, 14, 5, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func sampleTasks() []task.Task {
	created := time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)
	return []task.Task{
		{ID: 1, Title: "Write docs", Priority: task.PriorityLow, Status: task.StatusTodo, Tags: []string{}, Created: created, Updated: created},
		{ID: 2, Title: "Fix login", Priority: task.PriorityHigh, Status: task.StatusInProgress, Tags: []string{"bug", "auth"}, DueDate: strPtr("2025-02-25"), Created: created, Updated: created},
		{ID: 3, Title: "Ship", Priority: task.PriorityMedium, Status: task.StatusDone, Tags: []string{}, Created: created, Updated: created},
		{ID: 4, Title: "Legacy", Priority: "urgent", Status: task.StatusTodo, Tags: []string{}, Created: created, Updated: created},
	}
}

func TestRenderMarkdown(t *testing.T) {
	got, err := RenderMarkdown(sampleTasks(), now)
	require.NoError(t, err)

	want := "# 📋 TaskFlow - Project Tasks\n" +
		"**Generated:** 2025-03-01 14:05\n" +
		"**Total Tasks:** 4\n\n" +
		"---\n\n" +
		"## [>] In Progress (1)\n\n" +
		"### [!] [2] Fix login\n\n" +
		"- **Priority:** high\n" +
		"- **Status:** in_progress\n" +
		"- **Tags:** bug, auth\n" +
		"- **Due:** 2025-02-25\n" +
		"- **Created:** 2025-02-20\n\n" +
		"## [ ] Todo (2)\n\n" +
		"### [-] [1] Write docs\n\n" +
		"- **Priority:** low\n" +
		"- **Status:** todo\n" +
		"- **Created:** 2025-02-20\n\n" +
		"### [?] [4] Legacy\n\n" +
		"- **Priority:** urgent\n" +
		"- **Status:** todo\n" +
		"- **Created:** 2025-02-20\n\n" +
		"## [X] Done (1)\n\n" +
		"### [~] [3] Ship\n\n" +
		"- **Priority:** medium\n" +
		"- **Status:** done\n" +
		"- **Created:** 2025-02-20\n\n"

	assert.Equal(t, want, got)
}

func TestRenderMarkdownKeepsStoreOrder(t *testing.T) {
	created := time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: 1, Title: "Low first", Priority: task.PriorityLow, Status: task.StatusTodo, Tags: []string{}, Created: created, Updated: created},
		{ID: 5, Title: "High later", Priority: task.PriorityHigh, Status: task.StatusTodo, Tags: []string{}, Created: created, Updated: created},
	}
	got, err := RenderMarkdown(tasks, now)
	require.NoError(t, err)

	low := strings.Index(got, "[1] Low first")
	high := strings.Index(got, "[5] High later")
	require.NotEqual(t, -1, low)
	require.NotEqual(t, -1, high)
	assert.Less(t, low, high, "sections keep store order instead of sorting by priority")

	data := NewData(tasks, now)
	require.Len(t, data.Sections, 1)
	require.Len(t, data.Sections[0].Tasks, 2)
	assert.Equal(t, 1, data.Sections[0].Tasks[0].ID)
	assert.Equal(t, 5, data.Sections[0].Tasks[1].ID)
}

func TestRenderMarkdownEmpty(t *testing.T) {
	got, err := RenderMarkdown(nil, now)
	require.NoError(t, err)

	assert.Equal(t, "# 📋 TaskFlow - Project Tasks\n**Generated:** 2025-03-01 14:05\n**Total Tasks:** 0\n\n---\n\n", got)
	assert.NotContains(t, got, "## ")
}

func TestNewDataSections(t *testing.T) {
	data := NewData(sampleTasks(), now)

	var order []task.Status
	for _, s := range data.Sections {
		order = append(order, s.Status)
	}
	assert.Equal(t, []task.Status{task.StatusInProgress, task.StatusTodo, task.StatusDone}, order, "empty blocked section skipped")
	assert.Len(t, data.Tasks, 4)
	assert.True(t, data.Tasks[1].Overdue)
}

func TestCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{range .Tasks}}{{.StatusIcon}} {{.Title}}\n{{end}}"), 0644))

	got, err := NewRenderer(path).Markdown(sampleTasks()[:2], now)
	require.NoError(t, err)
	assert.Equal(t, "[ ] Write docs\n[>] Fix login\n", got)
}

func TestCustomTemplateErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewRenderer(filepath.Join(dir, "missing.tmpl")).Markdown(nil, now)
	assert.ErrorContains(t, err, "read template")

	bad := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{.Nope}}"), 0644))
	_, err = NewRenderer(bad).Markdown(nil, now)
	assert.ErrorContains(t, err, "render report")

	broken := filepath.Join(dir, "broken.tmpl")
	require.NoError(t, os.WriteFile(broken, []byte("{{range}}"), 0644))
	_, err = NewRenderer(broken).Markdown(nil, now)
	assert.ErrorContains(t, err, "parse template")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRenderYAML(t *testing.T) {
	data, err := NewRenderer("").Render(FormatYAML, sampleTasks(), now)
	require.NoError(t, err)

	var snap struct {
		Total int `yaml:"total"`
		Tasks []struct {
			ID      int      `yaml:"id"`
			Tags    []string `yaml:"tags"`
			DueDate *string  `yaml:"due_date"`
			Overdue bool     `yaml:"overdue"`
		} `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, 4, snap.Total)
	require.Len(t, snap.Tasks, 4)
	assert.Equal(t, []string{"bug", "auth"}, snap.Tasks[1].Tags)
	require.NotNil(t, snap.Tasks[1].DueDate)
	assert.Equal(t, "2025-02-25", *snap.Tasks[1].DueDate)
	assert.True(t, snap.Tasks[1].Overdue)
	assert.Nil(t, snap.Tasks[0].DueDate)
}

func TestRenderJSON(t *testing.T) {
	data, err := NewRenderer("").Render(FormatJSON, sampleTasks(), now)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"tasks\": ["))
	assert.Contains(t, text, `"last_updated": "2025-03-01T14:05:00Z"`)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultOutput)

	require.NoError(t, ExportMarkdown(sampleTasks(), path, now))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Total Tasks:** 4")

	err = ExportMarkdown(nil, filepath.Join(dir, "nope", "TASKS.md"), now)
	assert.ErrorContains(t, err, "write export")

	assert.Error(t, NewRenderer("").Export("", FormatMarkdown, nil, now))
}
