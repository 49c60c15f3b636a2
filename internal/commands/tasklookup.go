package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskflow/internal/api"
	"taskflow/internal/dashboard"
	"taskflow/internal/exitcode"
	"taskflow/internal/nav"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

const sessionExpired = "error: session expired (run: taskflow login)"

// board is a mounted dashboard controller together with the navigator that
// records where it redirected.
type board struct {
	ctrl *dashboard.Controller
	nav  *nav.Recorder
}

// openBoard mounts a controller over env and loads the task collection.
// It returns a non-zero exit code when the collection could not be loaded.
func openBoard(ctx context.Context, env *Env, confirm dashboard.Confirmer, errOut io.Writer) (*board, int) {
	rec := &nav.Recorder{}
	ctrl := dashboard.New(env.Service, env.Store, rec, confirm, env.Log)
	ctrl.Mount(ctx)

	if rec.Last() == nav.Login {
		fmt.Fprintln(errOut, sessionExpired)
		return nil, exitcode.AuthError
	}
	if err := ctrl.View().FetchErr; err != nil {
		return nil, reportError(errOut, err)
	}
	return &board{ctrl: ctrl, nav: rec}, exitcode.Success
}

// lookup resolves ref against the loaded collection.
func (b *board) lookup(ref string, errOut io.Writer) (tasks.Task, int) {
	t, err := ResolveTask(b.ctrl.Tasks(), ref)
	switch {
	case err == nil:
		return t, exitcode.Success
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous task reference: %s\n", ref)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return tasks.Task{}, exitcode.UserError
}

// settle maps the outcome of a mutation to an exit code. A refetch that
// ended the session wins over the mutation's own error.
func (b *board) settle(err error, errOut io.Writer) int {
	if b.nav.Last() == nav.Login {
		fmt.Fprintln(errOut, sessionExpired)
		return exitcode.AuthError
	}
	if err != nil {
		return reportError(errOut, err)
	}
	return exitcode.Success
}

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	status := api.StatusOf(err)
	switch {
	case status == http.StatusUnauthorized:
		fmt.Fprintln(errOut, sessionExpired)
		return exitcode.AuthError
	case status >= 400 && status < 500:
		msg := api.MessageOf(err)
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
