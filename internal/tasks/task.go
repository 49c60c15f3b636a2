// Package tasks defines the task record and the pure projections the
// dashboard computes over a task collection.
package tasks

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists the known statuses in rotation order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Next returns the status that follows s in the rotation
// Pending -> In Progress -> Completed -> Pending.
// Any unrecognised status rotates back to Pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the known priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// ParseStatus matches s case-insensitively against the known statuses.
// Hyphens and underscores are accepted in place of spaces ("in-progress").
func ParseStatus(s string) (Status, bool) {
	key := normalizeEnum(s)
	for _, v := range Statuses {
		if normalizeEnum(string(v)) == key {
			return v, true
		}
	}
	return "", false
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	key := normalizeEnum(s)
	for _, v := range Priorities {
		if normalizeEnum(string(v)) == key {
			return v, true
		}
	}
	return "", false
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// ID is an opaque, server-assigned task identifier. Servers may send it as a
// JSON string or number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("task id: expected string or number, got %s", data)
	}
	*id = ID(data)
	return nil
}

// Timestamp is the server-assigned creation time, kept as the text the
// server sent. Strings decode unquoted; numbers (epoch values) and any other
// scalar keep their literal JSON text, so one odd record cannot fail a list.
type Timestamp string

// UnmarshalJSON accepts any JSON value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = Timestamp(s)
		return nil
	}
	*ts = Timestamp(data)
	return nil
}

// Task represents a single task record.
type Task struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Created     Timestamp `json:"created,omitempty"`
}

// Draft is the input of the add dialog.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
}

// Blank reports whether the draft has no usable title.
func (d Draft) Blank() bool {
	return strings.TrimSpace(d.Title) == ""
}

// NewTask is the create request body. Priority and status default to
// Medium and Pending.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// ToNewTask converts the draft into a create request body.
func (d Draft) ToNewTask() NewTask {
	nt := NewTask{
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	if nt.Status == "" {
		nt.Status = StatusPending
	}
	return nt
}

// Patch is a partial update. Only non-nil fields are sent.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// StatusPatch returns a patch carrying only a status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// FullPatch returns a patch carrying every editable field of t.
func FullPatch(t Task) Patch {
	return Patch{
		Title:       &t.Title,
		Description: &t.Description,
		Status:      &t.Status,
		Priority:    &t.Priority,
	}
}

// Find returns the task with the given id.
func Find(list []Task, id ID) (Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
