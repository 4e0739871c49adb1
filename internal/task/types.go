// Package task owns the task file: parsing, validation, queries and mutations.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority represents a task priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the known priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns the sort rank of the priority. Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 3
}

// Icon returns the ASCII marker for the priority.
func (p Priority) Icon() string {
	switch p {
	case PriorityHigh:
		return "[!]"
	case PriorityMedium:
		return "[~]"
	case PriorityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

// Label returns the capitalized priority name, e.g. "High".
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// ParsePriority parses a priority name. An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: high, medium, low", ErrInvalidPriority, s)
	}
	return p, nil
}

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses lists the known statuses in summary order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusBlocked, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Icon returns the ASCII marker for the status.
func (s Status) Icon() string {
	switch s {
	case StatusTodo:
		return "[ ]"
	case StatusInProgress:
		return "[>]"
	case StatusDone:
		return "[X]"
	case StatusBlocked:
		return "[#]"
	default:
		return "[?]"
	}
}

// Label returns a human-readable status name, e.g. "In Progress".
func (s Status) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseStatus parses a status name. "in-progress" and "doing" are accepted
// as aliases for in_progress.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "in-progress", "doing", "started":
		return StatusInProgress, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: todo, in_progress, done, blocked", ErrInvalidStatus, s)
	}
	return st, nil
}

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned when a task title is blank.
	ErrEmptyTitle = errors.New("title required")
	// ErrInvalidPriority is returned for priorities outside high|medium|low.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrInvalidStatus is returned for statuses outside the known set.
	ErrInvalidStatus = errors.New("invalid status")
)

// PersistError reports a failed write of the task file. The in-memory
// change that preceded it still stands.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// Task represents a single tracked task.
type Task struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Priority Priority  `json:"priority"`
	Status   Status    `json:"status"`
	Tags     []string  `json:"tags"`
	DueDate  *string   `json:"due_date"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// HasDueDate reports whether the task carries a non-empty due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && *t.DueDate != ""
}

// Due returns the raw due date text, or "" when absent.
func (t Task) Due() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// HasTag reports whether tag appears in the task's tags (exact match).
func (t Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers cannot alias store state.
func (t Task) clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}

// UnmarshalJSON accepts RFC 3339 timestamps as well as the naive ISO form
// ("2006-01-02T15:04:05.999999") written by earlier releases.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		Created string `json:"created"`
		Updated string `json:"updated"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if t.Created, err = parseTimestamp(aux.Created); err != nil {
		return fmt.Errorf("task %d: created: %w", t.ID, err)
	}
	if t.Updated, err = parseTimestamp(aux.Updated); err != nil {
		return fmt.Errorf("task %d: updated: %w", t.ID, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title    *string
	Priority *Priority
	Status   *Status
	Tags     *[]string
	// DueDate set to "" clears the due date.
	DueDate *string
}

// IsEmpty reports whether the patch sets no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Priority == nil && p.Status == nil && p.Tags == nil && p.DueDate == nil
}

// validate checks patch values before anything is applied.
func (p Patch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidPriority, *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, *p.Status)
	}
	return nil
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			d := *p.DueDate
			t.DueDate = &d
		}
	}
}

// Filter narrows List results. Zero-value fields impose no constraint.
type Filter struct {
	Status   Status
	Priority Priority
	Tag      string
}

// Match reports whether t satisfies every set field of f.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	return true
}

// Document is the on-disk shape of the task file.
type Document struct {
	Tasks       []Task    `json:"tasks"`
	LastUpdated time.Time `json:"last_updated"`
}

// UnmarshalJSON tolerates naive timestamps for last_updated.
func (d *Document) UnmarshalJSON(data []byte) error {
	aux := struct {
		Tasks       []Task `json:"tasks"`
		LastUpdated string `json:"last_updated"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	lu, err := parseTimestamp(aux.LastUpdated)
	if err != nil {
		return fmt.Errorf("last_updated: %w", err)
	}
	d.Tasks = aux.Tasks
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	d.LastUpdated = lu
	return nil
}

// timestampLayouts are tried in order when reading stored timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp and normalizes it to UTC.
// Naive values are interpreted in local time. Empty input yields the zero time.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for i, layout := range timestampLayouts {
		var t time.Time
		var err error
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
