package commands

import (
	"errors"
	"fmt"
	"strings"

	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef extracts the task reference from args.
//
// Exactly one reference is accepted. Leading and trailing whitespace is
// ignored; a reference containing whitespace is invalid.
func ParseTaskRef(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskRefRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}
	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return "", ErrTaskRefRequired
	}
	if strings.ContainsAny(ref, " \t\r\n") {
		return "", fmt.Errorf("invalid task reference: %s", ref)
	}
	return ref, nil
}

// ResolveTask finds the task ref points at.
//
// An exact id match wins. Otherwise ref must be a prefix of exactly one id;
// no match returns service.ErrNotFound and several return
// service.ErrAmbiguous.
func ResolveTask(list []tasks.Task, ref string) (tasks.Task, error) {
	if t, ok := tasks.Find(list, tasks.ID(ref)); ok {
		return t, nil
	}
	var matches []tasks.Task
	for _, t := range list {
		if strings.HasPrefix(string(t.ID), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return tasks.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return tasks.Task{}, fmt.Errorf("%w: %s matches %d tasks", service.ErrAmbiguous, ref, len(matches))
	}
}
