// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nibzard/taskflow/internal/task"
)

// Tags that open a result line.
const (
	TagOK    = "[OK]"
	TagFail  = "[X]"
	TagWarn  = "[!]"
	TagInfo  = "[INFO]"
	TagTip   = "[TIP]"
	TagStart = "[>]"
	TagBlock = "[#]"
	TagTodo  = "[ ]"
	TagDel   = "[DEL]"
	TagEdit  = "[EDIT]"
	TagStats = "[STATS]"
	TagTasks = "[TASKS]"
)

const (
	overdueMarker    = " [!] OVERDUE"
	invalidDueMarker = " [?] INVALID DUE"
)

type styles struct {
	ok, fail, warn, info, faint, bold lipgloss.Style
	priority                          map[task.Priority]lipgloss.Style
	status                            map[task.Status]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		info:  r.NewStyle().Foreground(lipgloss.Color("39")),
		faint: r.NewStyle().Faint(true),
		bold:  r.NewStyle().Bold(true),
		priority: map[task.Priority]lipgloss.Style{
			task.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("196")),
			task.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("214")),
			task.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("244")),
		},
		status: map[task.Status]lipgloss.Style{
			task.StatusInProgress: r.NewStyle().Foreground(lipgloss.Color("39")),
			task.StatusBlocked:    r.NewStyle().Foreground(lipgloss.Color("214")),
			task.StatusDone:       r.NewStyle().Foreground(lipgloss.Color("42")),
		},
	}
}

// Printer writes styled taskflow output to a writer.
type Printer struct {
	w     io.Writer
	color bool
	quiet bool
	now   func() time.Time
	st    styles
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor enables or disables styling. Styling is also dropped
// automatically when w is not a terminal.
func WithColor(enabled bool) Option {
	return func(p *Printer) { p.color = enabled }
}

// WithQuiet suppresses informational lines and tips.
func WithQuiet(quiet bool) Option {
	return func(p *Printer) { p.quiet = quiet }
}

// WithClock sets the time source for overdue markers and relative dates.
func WithClock(now func() time.Time) Option {
	return func(p *Printer) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Printer writing to w.
func New(w io.Writer, opts ...Option) *Printer {
	p := &Printer{w: w, color: true, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.st = newStyles(lipgloss.NewRenderer(w))
	return p
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Println writes a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Printf writes plain formatted text.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *Printer) tagged(s lipgloss.Style, tag, format string, a ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(s, tag), fmt.Sprintf(format, a...))
}

// OK writes a success line: "[OK] ...".
func (p *Printer) OK(format string, a ...any) {
	p.tagged(p.st.ok, TagOK, format, a...)
}

// Fail writes a failure line: "[X] ...".
func (p *Printer) Fail(format string, a ...any) {
	p.tagged(p.st.fail, TagFail, format, a...)
}

// Warn writes a warning line: "[!] ...".
func (p *Printer) Warn(format string, a ...any) {
	p.tagged(p.st.warn, TagWarn, format, a...)
}

// Info writes an informational line: "[INFO] ...". Suppressed when quiet.
func (p *Printer) Info(format string, a ...any) {
	if p.quiet {
		return
	}
	p.tagged(p.st.info, TagInfo, format, a...)
}

// Event writes a line opened by an arbitrary tag such as "[>]" or "[DEL]".
func (p *Printer) Event(tag, format string, a ...any) {
	s := p.st.ok
	switch tag {
	case TagStart:
		s = p.st.status[task.StatusInProgress]
	case TagBlock, TagEdit:
		s = p.st.warn
	case TagDel:
		s = p.st.fail
	}
	p.tagged(s, tag, format, a...)
}

// TaskRef formats "[id] title".
func TaskRef(t task.Task) string {
	return fmt.Sprintf("[%d] %s", t.ID, normalizeTitle(t.Title))
}

// Tip writes a "[TIP]" heading followed by indented lines. Suppressed when quiet.
func (p *Printer) Tip(heading string, lines ...string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, "\n%s %s\n", p.paint(p.st.info, TagTip), heading)
	for _, l := range lines {
		fmt.Fprintf(p.w, "   %s\n", l)
	}
}

// TaskLine formats a one-line task summary:
// "<status icon> <priority icon> [id] title" plus an overdue or invalid-due marker.
func TaskLine(t task.Task, now time.Time) string {
	return fmt.Sprintf("%s %s %s%s", t.Status.Icon(), t.Priority.Icon(), TaskRef(t), dueMarker(t, now))
}

func dueMarker(t task.Task, now time.Time) string {
	switch task.CheckDue(t, now) {
	case task.DueOverdue:
		return overdueMarker
	case task.DueInvalid:
		return invalidDueMarker
	}
	return ""
}

// Task writes one task line, followed by a details block when details is set.
func (p *Printer) Task(t task.Task, details bool) {
	now := p.now()
	line := fmt.Sprintf("%s %s %s",
		p.paint(p.st.status[t.Status], t.Status.Icon()),
		p.paint(p.st.priority[t.Priority], t.Priority.Icon()),
		TaskRef(t))
	if m := dueMarker(t, now); m != "" {
		s := p.st.fail
		if m == invalidDueMarker {
			s = p.st.warn
		}
		line += p.paint(s, m)
	}
	fmt.Fprintln(p.w, line)

	if !details {
		return
	}
	fmt.Fprintf(p.w, "    Priority: %s | Status: %s\n", t.Priority, t.Status)
	if len(t.Tags) > 0 {
		fmt.Fprintf(p.w, "    Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	if t.HasDueDate() {
		fmt.Fprintf(p.w, "    Due: %s%s\n", t.Due(), p.relativeDue(t, now))
	}
	fmt.Fprintf(p.w, "    Created: %s\n", formatDate(t.Created, now))
	fmt.Fprintln(p.w)
}

func (p *Printer) relativeDue(t task.Task, now time.Time) string {
	due, err := task.ParseDue(t.Due(), now.Location())
	if err != nil {
		return p.paint(p.st.warn, " (unrecognized date)")
	}
	return p.paint(p.st.faint, " ("+humanize.RelTime(due, now, "ago", "from now")+")")
}

func formatDate(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(now.Location()).Format("2006-01-02")
}

// TaskList writes the list view: a header, the shown tasks and a
// per-status summary of all tasks.
func (p *Printer) TaskList(shown, all []task.Task, details bool) {
	fmt.Fprintf(p.w, "\n%s TaskFlow - %d task(s)\n\n", p.paint(p.st.bold, TagTasks), len(shown))
	for _, t := range shown {
		p.Task(t, details)
	}

	fmt.Fprintln(p.w)
	counts := make(map[task.Status]int, len(task.Statuses))
	for _, t := range all {
		counts[t.Status]++
	}
	fmt.Fprintf(p.w, "%s Summary:\n", p.paint(p.st.bold, TagStats))
	for _, st := range task.Statuses {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(p.w, "   %s %s: %d\n", p.paint(p.st.status[st], st.Icon()), st.Label(), n)
		}
	}
}

// Stats writes the statistics view.
func (p *Printer) Stats(st task.Stats) {
	fmt.Fprintf(p.w, "\n%s TaskFlow Statistics\n\n", p.paint(p.st.bold, TagStats))
	fmt.Fprintf(p.w, "Total Tasks: %d\n\n", st.Total)

	fmt.Fprintln(p.w, "By Status:")
	for _, s := range task.Statuses {
		n := st.ByStatus[s]
		fmt.Fprintf(p.w, "  %s %s: %d (%.1f%%)\n", p.paint(p.st.status[s], s.Icon()), s.Label(), n, st.Percent(n))
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "By Priority:")
	for _, pr := range task.Priorities {
		n := st.ByPriority[pr]
		fmt.Fprintf(p.w, "  %s %s: %d (%.1f%%)\n", p.paint(p.st.priority[pr], pr.Icon()), pr.Label(), n, st.Percent(n))
	}

	if st.Overdue > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%s Overdue: %d\n", p.paint(p.st.fail, TagWarn), st.Overdue)
	}
	if st.InvalidDue > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "%s Unrecognized due dates: %d\n", p.paint(p.st.warn, "[?]"), st.InvalidDue)
	}
	fmt.Fprintln(p.w)
}

// normalizeTitle replaces newlines so a task always fits on one line.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	return strings.ReplaceAll(title, "\n", " ")
}
