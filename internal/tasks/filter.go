package tasks

import "strings"

// All is the wildcard value for the status and priority filters.
const All = "All"

// Filter holds the dashboard filter criteria. Empty Status or Priority fields
// behave like All.
type Filter struct {
	Search   string
	Status   string
	Priority string
}

// DefaultFilter matches every task.
func DefaultFilter() Filter {
	return Filter{Status: All, Priority: All}
}

// Match reports whether t passes every criterion.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && f.Status != All && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != All && string(t.Priority) != f.Priority {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the tasks matching f, in collection order.
// The result never aliases list.
func (f Filter) Apply(list []Task) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats are the aggregate counts shown in the stat tiles.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// Count computes Stats over the full, unfiltered collection.
func Count(list []Task) Stats {
	s := Stats{Total: len(list)}
	for _, t := range list {
		switch t.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}
