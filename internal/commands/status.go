package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/tasks"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command. Each run advances the task one
// step through Pending, In Progress and Completed, wrapping around.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"cycle"} }
func (c *StatusCmd) Synopsis() string  { return "Advance a task's status" }
func (c *StatusCmd) Usage() string     { return "taskflow status <ref>" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b, code := openBoard(ctx, env, nil, errOut)
	if code != exitcode.Success {
		return code
	}
	task, code := b.lookup(ref, errOut)
	if code != exitcode.Success {
		return code
	}

	_, err = b.ctrl.CycleStatus(ctx, task.ID)
	if code := b.settle(err, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		next := task.Status.Next()
		if updated, ok := tasks.Find(b.ctrl.Tasks(), task.ID); ok {
			next = updated.Status
		}
		fmt.Fprintf(out, "%s -> %s\n", task.Status, next)
	}
	return exitcode.Success
}
