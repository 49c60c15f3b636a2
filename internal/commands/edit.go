package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/dashboard"
	"taskflow/internal/exitcode"
	"taskflow/internal/tasks"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optString
	description optString
	status      optString
	priority    optString
}

// SetTitle sets the title flag (for testing).
func (c *EditCmd) SetTitle(s string) { _ = c.title.Set(s) }

// SetDescription sets the description flag (for testing).
func (c *EditCmd) SetDescription(s string) { _ = c.description.Set(s) }

// SetStatus sets the status flag (for testing).
func (c *EditCmd) SetStatus(s string) { _ = c.status.Set(s) }

// SetPriority sets the priority flag (for testing).
func (c *EditCmd) SetPriority(s string) { _ = c.priority.Set(s) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskflow edit [--title <t>] [--description <d>] [--status <s>] [--priority <p>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set && !c.status.set && !c.priority.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	var status tasks.Status
	if c.status.set {
		var ok bool
		if status, ok = tasks.ParseStatus(c.status.value); !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status.value)
			return exitcode.UserError
		}
	}
	var priority tasks.Priority
	if c.priority.set {
		var ok bool
		if priority, ok = tasks.ParsePriority(c.priority.value); !ok {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority.value)
			return exitcode.UserError
		}
	}

	b, code := openBoard(ctx, env, nil, errOut)
	if code != exitcode.Success {
		return code
	}
	task, code := b.lookup(ref, errOut)
	if code != exitcode.Success {
		return code
	}

	b.ctrl.OpenEdit(task.ID)
	edited := *b.ctrl.View().Editing
	if c.title.set {
		edited.Title = c.title.value
	}
	if c.description.set {
		edited.Description = c.description.value
	}
	if c.status.set {
		edited.Status = status
	}
	if c.priority.set {
		edited.Priority = priority
	}

	err = b.ctrl.SaveEdit(ctx, edited)
	if errors.Is(err, dashboard.ErrBlankTitle) {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if code := b.settle(err, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
