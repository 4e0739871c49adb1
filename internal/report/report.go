// Package report renders task snapshots for people and other tools.
package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskflow/internal/task"
)

//go:embed tasks.md.tmpl
var defaultTemplate string

// DefaultOutput is the export file used when none is configured.
const DefaultOutput = "TASKS.md"

// Format selects an export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatMarkdown, FormatYAML, FormatJSON}

// ParseFormat parses an export format name. "md" and "yml" are accepted.
// An empty string yields FormatMarkdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q, must be one of: markdown, yaml, json", s)
}

// sectionOrder is the order status groups appear in the Markdown report.
var sectionOrder = []task.Status{task.StatusInProgress, task.StatusTodo, task.StatusBlocked, task.StatusDone}

// Entry is a task as seen by the report template.
type Entry struct {
	ID           int
	Title        string
	Priority     string
	PriorityIcon string
	Status       string
	StatusIcon   string
	Tags         []string
	Due          string
	Created      string
	Overdue      bool
}

// Section groups the entries of one status.
type Section struct {
	Status task.Status
	Icon   string
	Label  string
	Tasks  []Entry
}

// Data holds report template variables.
type Data struct {
	Generated   string
	GeneratedAt time.Time
	Total       int
	Sections    []Section
	Tasks       []Entry
}

// NewData builds template data from tasks in store order. Dates are shown in
// now's location.
func NewData(tasks []task.Task, now time.Time) Data {
	data := Data{
		Generated:   now.Format("2006-01-02 15:04"),
		GeneratedAt: now,
		Total:       len(tasks),
		Tasks:       make([]Entry, 0, len(tasks)),
	}
	byStatus := make(map[task.Status][]Entry, len(sectionOrder))
	for _, t := range tasks {
		e := newEntry(t, now)
		data.Tasks = append(data.Tasks, e)
		byStatus[t.Status] = append(byStatus[t.Status], e)
	}
	for _, st := range sectionOrder {
		entries := byStatus[st]
		if len(entries) == 0 {
			continue
		}
		data.Sections = append(data.Sections, Section{
			Status: st,
			Icon:   st.Icon(),
			Label:  st.Label(),
			Tasks:  entries,
		})
	}
	return data
}

func newEntry(t task.Task, now time.Time) Entry {
	created := ""
	if !t.Created.IsZero() {
		created = t.Created.In(now.Location()).Format("2006-01-02")
	}
	return Entry{
		ID:           t.ID,
		Title:        t.Title,
		Priority:     string(t.Priority),
		PriorityIcon: t.Priority.Icon(),
		Status:       string(t.Status),
		StatusIcon:   t.Status.Icon(),
		Tags:         t.Tags,
		Due:          t.Due(),
		Created:      created,
		Overdue:      task.IsOverdue(t, now),
	}
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Renderer renders reports with strict missing-key behavior.
type Renderer struct {
	templatePath string
}

// NewRenderer creates a renderer. A non-empty templatePath replaces the
// bundled Markdown template.
func NewRenderer(templatePath string) *Renderer {
	return &Renderer{templatePath: templatePath}
}

func (r *Renderer) parse() (*template.Template, error) {
	name, raw := "tasks.md.tmpl", defaultTemplate
	if r != nil && r.templatePath != "" {
		data, err := os.ReadFile(r.templatePath)
		if err != nil {
			return nil, fmt.Errorf("read template %q: %w", r.templatePath, err)
		}
		name, raw = r.templatePath, string(data)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	return tmpl, nil
}

// Markdown renders the Markdown report.
func (r *Renderer) Markdown(tasks []task.Task, now time.Time) (string, error) {
	tmpl, err := r.parse()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewData(tasks, now)); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown renders tasks with the bundled template.
func RenderMarkdown(tasks []task.Task, now time.Time) (string, error) {
	return NewRenderer("").Markdown(tasks, now)
}

// Render encodes tasks in the given format.
func (r *Renderer) Render(f Format, tasks []task.Task, now time.Time) ([]byte, error) {
	switch f {
	case FormatMarkdown, "":
		s, err := r.Markdown(tasks, now)
		return []byte(s), err
	case FormatYAML:
		return renderYAML(tasks, now)
	case FormatJSON:
		return task.Encode(task.Document{Tasks: tasks, LastUpdated: now.UTC()})
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Export renders tasks and writes them to path.
func (r *Renderer) Export(path string, f Format, tasks []task.Task, now time.Time) error {
	if path == "" {
		return errors.New("export path is empty")
	}
	data, err := r.Render(f, tasks, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export %s: %w", path, err)
	}
	return nil
}

// ExportMarkdown renders tasks with the bundled template and writes them to path.
func ExportMarkdown(tasks []task.Task, path string, now time.Time) error {
	return NewRenderer("").Export(path, FormatMarkdown, tasks, now)
}

type yamlTask struct {
	ID       int       `yaml:"id"`
	Title    string    `yaml:"title"`
	Priority string    `yaml:"priority"`
	Status   string    `yaml:"status"`
	Tags     []string  `yaml:"tags"`
	DueDate  *string   `yaml:"due_date"`
	Overdue  bool      `yaml:"overdue"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`
}

type yamlSnapshot struct {
	Generated time.Time  `yaml:"generated"`
	Total     int        `yaml:"total"`
	Tasks     []yamlTask `yaml:"tasks"`
}

func renderYAML(tasks []task.Task, now time.Time) ([]byte, error) {
	snap := yamlSnapshot{
		Generated: now.UTC(),
		Total:     len(tasks),
		Tasks:     make([]yamlTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		snap.Tasks = append(snap.Tasks, yamlTask{
			ID:       t.ID,
			Title:    t.Title,
			Priority: string(t.Priority),
			Status:   string(t.Status),
			Tags:     tags,
			DueDate:  t.DueDate,
			Overdue:  task.IsOverdue(t, now),
			Created:  t.Created,
			Updated:  t.Updated,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}
