package task

import (
	"fmt"
	"strings"
	"time"
)

// DueState classifies a task's due date relative to a point in time.
type DueState int

const (
	// DueNone means the task has no due date.
	DueNone DueState = iota
	// DuePending means the due date has not passed, or the task is done.
	DuePending
	// DueOverdue means the task is not done and its due date has passed.
	DueOverdue
	// DueInvalid means the due date could not be parsed.
	DueInvalid
)

func (s DueState) String() string {
	switch s {
	case DueNone:
		return "none"
	case DuePending:
		return "pending"
	case DueOverdue:
		return "overdue"
	case DueInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("DueState(%d)", int(s))
	}
}

// Layouts carrying an explicit offset.
var dueOffsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Layouts interpreted in the caller's location.
var dueLocalLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDue parses an ISO-8601 date or date-time. Values without an offset
// are read in loc; a bare date means midnight.
func ParseDue(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dueOffsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range dueLocalLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", s)
}

// CheckDue classifies t's due date at now. Done tasks with a parseable due
// date are always DuePending.
func CheckDue(t Task, now time.Time) DueState {
	if !t.HasDueDate() {
		return DueNone
	}
	due, err := ParseDue(*t.DueDate, now.Location())
	if err != nil {
		return DueInvalid
	}
	if t.Status == StatusDone {
		return DuePending
	}
	if due.Before(now) {
		return DueOverdue
	}
	return DuePending
}

// IsOverdue reports whether t is overdue at now. It never fails: a missing or
// unparseable due date is not overdue, and neither is a done task.
func IsOverdue(t Task, now time.Time) bool {
	return CheckDue(t, now) == DueOverdue
}
