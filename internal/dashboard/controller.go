// Package dashboard owns the task list view: the authoritative copy of the
// user's tasks, the filter criteria, the derived counts and the dialog
// state, and the fetch/mutate/refetch protocol against the task API.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/api"
	"taskflow/internal/auth"
	"taskflow/internal/nav"
	"taskflow/internal/service"
	"taskflow/internal/session"
	"taskflow/internal/tasks"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Delete this task?"

// ErrBlankTitle is returned by SaveEdit when the edited title is empty.
// Create treats a blank title as a silent no-op instead.
var ErrBlankTitle = errors.New("title is required")

// State is the controller's lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Loading
	Ready
	// Error is never observed through View. A failed fetch is logged,
	// recorded in View.FetchErr, and the controller settles in Ready with
	// an empty list.
	Error
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Confirmer is the yes/no gate in front of destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always answers every confirmation with yes.
var Always = ConfirmFunc(func(string) bool { return true })

// Controller is safe for concurrent use. It holds no lock while talking to
// the API, so overlapping calls are possible; FetchAll responses that arrive
// after a newer one has been applied are dropped.
type Controller struct {
	svc     service.Service
	store   session.Store
	nav     nav.Navigator
	confirm Confirmer
	auth    *auth.Flow
	log     *log.Logger

	mu       sync.Mutex
	state    State
	session  session.Session
	all      []tasks.Task
	filter   tasks.Filter
	visible  []tasks.Task
	stats    tasks.Stats
	draft    tasks.Draft
	addOpen  bool
	editOpen bool
	editing  *tasks.Task
	loading  bool
	fetchErr error
	lastErr  error

	issued  uint64 // generation of the newest FetchAll started
	applied uint64 // generation of the newest FetchAll applied
}

// New creates a Controller. A nil confirmer declines every delete.
func New(svc service.Service, store session.Store, navigator nav.Navigator, confirm Confirmer, logger *log.Logger) *Controller {
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	c := &Controller{
		svc:     svc,
		store:   store,
		nav:     navigator,
		confirm: confirm,
		auth:    auth.New(svc, store, navigator, logger),
		log:     logger,
		filter:  tasks.DefaultFilter(),
		all:     []tasks.Task{},
	}
	c.recompute()
	return c
}

// Mount enforces the session guard and loads the collection. Without a
// token the controller redirects to login and issues no request.
func (c *Controller) Mount(ctx context.Context) {
	sess, err := c.store.Get(ctx)
	if err != nil {
		c.log.WithError(err).Warn("read session")
		sess = session.Session{}
	}

	c.mu.Lock()
	c.session = sess
	if !sess.Active() {
		c.state = Unauthenticated
		c.mu.Unlock()
		c.nav.Navigate(nav.Login)
		return
	}
	c.state = Loading
	c.loading = true
	c.mu.Unlock()

	c.FetchAll(ctx)
}

// FetchAll replaces the collection with the server's copy.
//
// On 401 the session is cleared and the controller redirects to login. Any
// other failure is logged and leaves an empty, usable list.
func (c *Controller) FetchAll(ctx context.Context) {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	token := c.session.Token
	c.mu.Unlock()

	list, err := c.svc.ListTasks(ctx, token)

	c.mu.Lock()
	if gen < c.applied {
		c.mu.Unlock()
		c.log.WithField("generation", gen).Debug("discarding stale task list")
		return
	}
	c.applied = gen
	c.loading = false

	switch {
	case err == nil:
		c.all = list
		if c.all == nil {
			c.all = []tasks.Task{}
		}
		c.fetchErr = nil
		c.state = Ready
		c.recompute()
		c.mu.Unlock()

	case api.IsUnauthorized(err):
		c.session = session.Session{}
		c.all = []tasks.Task{}
		c.fetchErr = err
		c.state = Unauthenticated
		c.recompute()
		c.mu.Unlock()

		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.log.WithError(clearErr).Error("clear session")
		}
		c.nav.Navigate(nav.Login)

	default:
		c.log.WithError(err).Error("fetch tasks")
		c.all = []tasks.Task{}
		c.fetchErr = err
		c.state = Ready
		c.recompute()
		c.mu.Unlock()
	}
}

// Create submits draft as a new task, refetches, and clears the draft.
// A blank title is a no-op that issues no request. The add dialog closes
// only when the create succeeded.
func (c *Controller) Create(ctx context.Context, draft tasks.Draft) error {
	if draft.Blank() {
		return nil
	}
	err := c.svc.CreateTask(ctx, c.token(), draft.ToNewTask())
	if err != nil {
		c.log.WithError(err).Error("create task")
	}
	c.FetchAll(ctx)

	c.mu.Lock()
	c.draft = tasks.Draft{}
	c.lastErr = err
	if err == nil {
		c.addOpen = false
	}
	c.mu.Unlock()
	return err
}

// SubmitDraft creates a task from the current draft.
func (c *Controller) SubmitDraft(ctx context.Context) error {
	c.mu.Lock()
	draft := c.draft
	c.mu.Unlock()
	return c.Create(ctx, draft)
}

// Update sends exactly the fields in patch and refetches.
func (c *Controller) Update(ctx context.Context, id tasks.ID, patch tasks.Patch) error {
	err := c.svc.UpdateTask(ctx, c.token(), id, patch)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Error("update task")
	}
	c.FetchAll(ctx)
	c.setLastErr(err)
	return err
}

// Delete asks the Confirmer, then deletes and refetches. It reports whether
// the delete was attempted.
func (c *Controller) Delete(ctx context.Context, id tasks.ID) (bool, error) {
	if !c.confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	err := c.svc.DeleteTask(ctx, c.token(), id)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Error("delete task")
	}
	c.FetchAll(ctx)
	c.setLastErr(err)
	return true, err
}

// CycleStatus advances a task through Pending -> In Progress -> Completed
// -> Pending. An id missing from the current collection is a no-op.
// It reports whether an update was sent.
func (c *Controller) CycleStatus(ctx context.Context, id tasks.ID) (bool, error) {
	c.mu.Lock()
	t, ok := tasks.Find(c.all, id)
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.Update(ctx, id, tasks.StatusPatch(t.Status.Next()))
}

// OpenEdit loads a copy of the task into the edit buffer and opens the
// edit dialog.
func (c *Controller) OpenEdit(id tasks.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := tasks.Find(c.all, id)
	if !ok {
		return false
	}
	c.editing = &t
	c.editOpen = true
	return true
}

// SaveEdit sends the edited fields of t, closes the edit dialog and
// refetches. A blank title is rejected before any request.
func (c *Controller) SaveEdit(ctx context.Context, t tasks.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrBlankTitle
	}
	err := c.svc.UpdateTask(ctx, c.token(), t.ID, tasks.FullPatch(t))
	if err != nil {
		c.log.WithError(err).WithField("id", t.ID).Error("save task")
	}

	c.mu.Lock()
	if err == nil {
		c.editing = nil
		c.editOpen = false
	}
	c.mu.Unlock()

	c.FetchAll(ctx)
	c.setLastErr(err)
	return err
}

// SetFilter replaces the filter criteria and recomputes the view. It never
// touches the network.
func (c *Controller) SetFilter(f tasks.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.recompute()
}

// SetDraft replaces the add dialog's input.
func (c *Controller) SetDraft(d tasks.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
}

// OpenAdd opens the add dialog.
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addOpen = true
}

// CloseDialogs closes both dialogs and drops the edit buffer.
func (c *Controller) CloseDialogs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addOpen = false
	c.editOpen = false
	c.editing = nil
}

// Logout signs out through auth.Flow and drops the collection. Fetches
// still in flight when it returns are discarded.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.applied = c.issued
	c.session = session.Session{}
	c.state = Unauthenticated
	c.loading = false
	c.fetchErr = nil
	c.all = []tasks.Task{}
	c.editing = nil
	c.addOpen = false
	c.editOpen = false
	c.recompute()
	return nil
}

// Tasks returns a copy of the full, unfiltered collection.
func (c *Controller) Tasks() []tasks.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tasks.Task(nil), c.all...)
}

func (c *Controller) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token
}

func (c *Controller) setLastErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

// recompute refreshes the derived views. Callers hold mu.
func (c *Controller) recompute() {
	c.visible = c.filter.Apply(c.all)
	c.stats = tasks.Count(c.all)
}
