package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/dashboard"
	"taskflow/internal/exitcode"
	"taskflow/internal/output"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes sets the yes flag (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskflow rm [--yes] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// label is filled in once the task is resolved.
	var confirm dashboard.Confirmer = dashboard.Always
	var label string
	if !c.yes {
		confirm = dashboard.ConfirmFunc(func(prompt string) bool {
			return promptYesNo(env.In, errOut, fmt.Sprintf("%s %s", prompt, label))
		})
	}

	b, code := openBoard(ctx, env, confirm, errOut)
	if code != exitcode.Success {
		return code
	}
	task, code := b.lookup(ref, errOut)
	if code != exitcode.Success {
		return code
	}
	label = fmt.Sprintf("%s %q", output.ShortID(task.ID), task.Title)

	attempted, err := b.ctrl.Delete(ctx, task.ID)
	if !attempted {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}
	if code := b.settle(err, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// promptYesNo writes question to w and reads one answer line from r.
// Anything but y or yes declines, including end of input.
func promptYesNo(r io.Reader, w io.Writer, question string) bool {
	if r == nil {
		return false
	}
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(w)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
