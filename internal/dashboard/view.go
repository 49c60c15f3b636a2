package dashboard

import (
	"strings"
	"unicode/utf8"

	"taskflow/internal/tasks"
)

// View is a point-in-time snapshot of everything the presentation layer
// renders. Slices are copies.
type View struct {
	State   State
	Email   string
	Loading bool

	Filter  tasks.Filter
	Tasks   []tasks.Task // filtered
	Stats   tasks.Stats  // over the unfiltered collection
	Draft   tasks.Draft
	Editing *tasks.Task

	AddOpen  bool
	EditOpen bool

	// FetchErr is the swallowed error of the last fetch, if it failed.
	FetchErr error
	// LastErr is the error of the last mutation, or nil when it succeeded.
	LastErr error
}

// Initial returns the upper-cased first letter of the email for the
// session header avatar, or "A" when signed out.
func (v View) Initial() string {
	if v.Email == "" {
		return "A"
	}
	r, _ := utf8.DecodeRuneInString(v.Email)
	return strings.ToUpper(string(r))
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:    c.state,
		Email:    c.session.Email,
		Loading:  c.loading,
		Filter:   c.filter,
		Tasks:    append([]tasks.Task(nil), c.visible...),
		Stats:    c.stats,
		Draft:    c.draft,
		AddOpen:  c.addOpen,
		EditOpen: c.editOpen,
		FetchErr: c.fetchErr,
		LastErr:  c.lastErr,
	}
	if c.editing != nil {
		e := *c.editing
		v.Editing = &e
	}
	return v
}
