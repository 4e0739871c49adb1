// Package ui provides the interactive task board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/output"
	"github.com/nibzard/taskflow/internal/task"
)

// ErrNotTTY is returned when the board is started without a terminal.
var ErrNotTTY = errors.New("board requires a TTY")

// DefaultRefresh is the interval between automatic reloads.
const DefaultRefresh = 2 * time.Second

// BoardOption configures the board.
type BoardOption func(*boardConfig)

type boardConfig struct {
	refresh time.Duration
	color   bool
	logger  *log.Logger
	now     func() time.Time
	out     io.Writer
}

// WithRefresh sets the auto-refresh interval.
func WithRefresh(d time.Duration) BoardOption {
	return func(c *boardConfig) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// WithColor enables or disables styling.
func WithColor(enabled bool) BoardOption {
	return func(c *boardConfig) { c.color = enabled }
}

// WithLogger sets the logger used for the initial load.
func WithLogger(l *log.Logger) BoardOption {
	return func(c *boardConfig) { c.logger = l }
}

// WithClock sets the time source used for overdue checks.
func WithClock(now func() time.Time) BoardOption {
	return func(c *boardConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOutput sets the terminal the board draws on. It defaults to os.Stdout.
func WithOutput(w io.Writer) BoardOption {
	return func(c *boardConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// RunBoard opens the board for the task file at path and blocks until the
// user quits or ctx is cancelled.
func RunBoard(ctx context.Context, path string, opts ...BoardOption) error {
	model := newBoardModel(path, opts...)
	if !IsTTY(model.cfg.out) {
		return ErrNotTTY
	}
	// Load warnings go to the configured logger once, before the alt screen
	// takes over the terminal.
	model.load(model.cfg.logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(model.cfg.out))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type boardModel struct {
	path     string
	cfg      boardConfig
	st       boardStyles
	data     *boardData
	loadErr  error
	filter   task.Status
	showHelp bool
}

type boardData struct {
	counts  map[task.Status]int
	overdue int
	groups  map[task.Status][]task.Task
	now     time.Time
}

type tickMsg time.Time

type boardStyles struct {
	title, heading, faint, overdue, err lipgloss.Style
}

func newBoardStyles(color bool) boardStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return boardStyles{plain, plain, plain, plain, plain}
	}
	return boardStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		heading: lipgloss.NewStyle().Bold(true),
		faint:   lipgloss.NewStyle().Faint(true),
		overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

func newBoardModel(path string, opts ...BoardOption) *boardModel {
	cfg := boardConfig{refresh: DefaultRefresh, color: true, logger: log.New(io.Discard), now: time.Now, out: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &boardModel{path: path, cfg: cfg, st: newBoardStyles(cfg.color)}
}

func (m *boardModel) Init() tea.Cmd {
	if m.data == nil {
		m.refresh()
	}
	return tickCmd(m.cfg.refresh)
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.filter = task.StatusTodo
		case "2":
			m.filter = task.StatusInProgress
		case "3":
			m.filter = task.StatusBlocked
		case "4":
			m.filter = task.StatusDone
		case "0":
			m.filter = ""
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.cfg.refresh)
	}
	return m, nil
}

func (m *boardModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(m.st.err.Render("Could not load tasks: "+m.loadErr.Error()) + "\n\n")
	}
	if m.filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s (press 0 to clear)\n\n", m.filter.Label()))
	}
	if m.data != nil {
		m.writeOverview(&b, m.data)
		m.writeGroups(&b, m.data)
	}
	m.writeFooter(&b)
	return b.String()
}

// refresh reloads the task file without logging. Load errors are shown in
// the view instead.
func (m *boardModel) refresh() {
	m.load(logging.Discard())
}

func (m *boardModel) load(logger *log.Logger) {
	s := task.Open(m.path, task.WithLogger(logger), task.WithClock(m.cfg.now))
	m.loadErr = s.LoadErr()
	m.data = buildBoardData(s.Tasks(), m.cfg.now())
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func buildBoardData(tasks []task.Task, now time.Time) *boardData {
	data := &boardData{
		counts: make(map[task.Status]int, len(task.Statuses)),
		groups: make(map[task.Status][]task.Task, len(task.Statuses)),
		now:    now,
	}
	for _, st := range task.Statuses {
		data.counts[st] = 0
	}
	for _, t := range tasks {
		data.counts[t.Status]++
		data.groups[t.Status] = append(data.groups[t.Status], t)
		if task.IsOverdue(t, now) {
			data.overdue++
		}
	}
	for _, g := range data.groups {
		task.SortByPriority(g)
	}
	return data
}

// boardOrder is the order groups appear on the board.
var boardOrder = []task.Status{task.StatusInProgress, task.StatusTodo, task.StatusBlocked, task.StatusDone}

func (m *boardModel) writeTitle(b *strings.Builder) {
	title := "TaskFlow Board"
	b.WriteString(m.st.title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *boardModel) writeOverview(b *strings.Builder, data *boardData) {
	b.WriteString(fmt.Sprintf("  Todo: %d  In Progress: %d  Blocked: %d  Done: %d",
		data.counts[task.StatusTodo],
		data.counts[task.StatusInProgress],
		data.counts[task.StatusBlocked],
		data.counts[task.StatusDone],
	))
	if data.overdue > 0 {
		b.WriteString("  " + m.st.overdue.Render(fmt.Sprintf("Overdue: %d", data.overdue)))
	}
	b.WriteString("\n\n")
}

func (m *boardModel) writeGroups(b *strings.Builder, data *boardData) {
	shown := 0
	for _, st := range boardOrder {
		if m.filter != "" && st != m.filter {
			continue
		}
		group := data.groups[st]
		if len(group) == 0 {
			continue
		}
		shown++
		b.WriteString(m.st.heading.Render(fmt.Sprintf("%s %s (%d)", st.Icon(), st.Label(), len(group))) + "\n")
		for _, t := range group {
			line := "  " + output.TaskLine(t, data.now)
			if task.IsOverdue(t, data.now) {
				line = m.st.overdue.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	if shown == 0 {
		b.WriteString(m.st.faint.Render("  No tasks to show.") + "\n\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload task file\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by todo\n")
	b.WriteString("  2            Filter by in progress\n")
	b.WriteString("  3            Filter by blocked\n")
	b.WriteString("  4            Filter by done\n")
	b.WriteString("  0            Clear filter\n\n")
}

func (m *boardModel) writeFooter(b *strings.Builder) {
	b.WriteString(m.st.faint.Render(fmt.Sprintf("%s | h for help | q to quit | refreshing every %s", m.path, m.cfg.refresh)) + "\n")
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
