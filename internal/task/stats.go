package task

import "time"

// Stats summarizes a task set. ByStatus and ByPriority always carry every
// known key, zero counts included.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByPriority map[Priority]int
	Overdue    int
	// InvalidDue counts tasks whose due date could not be parsed.
	InvalidDue int
}

// Percent returns n as a percentage of Total, or 0 for an empty set.
func (s Stats) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

// ComputeStats aggregates tasks at now. Tasks with unknown status or
// priority count toward Total only.
func ComputeStats(tasks []Task, now time.Time) Stats {
	st := Stats{
		Total:      len(tasks),
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for _, p := range Priorities {
		st.ByPriority[p] = 0
	}

	for _, t := range tasks {
		if t.Status.Valid() {
			st.ByStatus[t.Status]++
		}
		if t.Priority.Valid() {
			st.ByPriority[t.Priority]++
		}
		switch CheckDue(t, now) {
		case DueOverdue:
			st.Overdue++
		case DueInvalid:
			st.InvalidDue++
		}
	}
	return st
}
