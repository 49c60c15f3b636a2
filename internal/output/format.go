// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskflow/internal/tasks"
)

const (
	// ListSeparator separates the dashboard header from the task cards.
	ListSeparator = "------------"

	// ShortIDLen is how many characters of a task id are displayed.
	ShortIDLen = 8
)

// FormatHeader formats the session header.
// Format: "[{INITIAL}] {EMAIL}\n"
func FormatHeader(w io.Writer, initial, email string) {
	fmt.Fprintf(w, "[%s] %s\n", initial, email)
}

// FormatStats formats the stat tiles on one line.
func FormatStats(w io.Writer, s tasks.Stats) {
	fmt.Fprintf(w, "total %d  pending %d  in progress %d  completed %d\n",
		s.Total, s.Pending, s.InProgress, s.Completed)
}

// FormatFilter describes an active filter and how many tasks it kept.
// Nothing is written when f matches everything.
func FormatFilter(w io.Writer, f tasks.Filter, shown, total int) {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Status != "" && f.Status != tasks.All {
		parts = append(parts, "status="+f.Status)
	}
	if f.Priority != "" && f.Priority != tasks.All {
		parts = append(parts, "priority="+f.Priority)
	}
	if len(parts) == 0 {
		return
	}
	fmt.Fprintf(w, "showing %d of %d (%s)\n", shown, total, strings.Join(parts, " "))
}

// FormatTask formats a task card.
// Format: "{ID:<8}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}\n", followed by the
// description indented under the title when there is one.
func FormatTask(w io.Writer, t tasks.Task) {
	prefix := fmt.Sprintf("%-*s  %-11s  %-6s  ", ShortIDLen, ShortID(t.ID), t.Status, t.Priority)
	fmt.Fprintf(w, "%s%s\n", prefix, normalizeTitle(t.Title))
	if desc := normalizeText(t.Description); desc != "" {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", len(prefix)), desc)
	}
}

// ShortID returns the displayed form of id.
func ShortID(id tasks.ID) string {
	r := []rune(string(id))
	if len(r) <= ShortIDLen {
		return string(r)
	}
	return string(r[:ShortIDLen])
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims surrounding whitespace.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
