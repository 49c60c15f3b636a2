package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args) and `taskflow list [filters]`.
type ListCmd struct {
	search   string
	status   string
	priority string
}

// SetFilter sets the filter flags (for testing).
func (c *ListCmd) SetFilter(search, status, priority string) {
	c.search, c.status, c.priority = search, status, priority
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Show the dashboard" }
func (c *ListCmd) Usage() string {
	return "taskflow list [--search <text>] [--status <s>] [--priority <p>]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, code := c.filter(errOut)
	if code != exitcode.Success {
		return code
	}

	b, code := openBoard(ctx, env, nil, errOut)
	if code != exitcode.Success {
		return code
	}
	b.ctrl.SetFilter(filter)
	v := b.ctrl.View()

	if !cfg.Quiet {
		output.FormatHeader(out, v.Initial(), v.Email)
		output.FormatStats(out, v.Stats)
		output.FormatFilter(out, v.Filter, len(v.Tasks), v.Stats.Total)
		fmt.Fprintln(out, output.ListSeparator)
	}
	for _, t := range v.Tasks {
		output.FormatTask(out, t)
	}
	if len(v.Tasks) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// filter validates the flags and builds the filter criteria.
func (c *ListCmd) filter(errOut io.Writer) (tasks.Filter, int) {
	f := tasks.DefaultFilter()
	f.Search = c.search
	if c.status != "" && c.status != tasks.All {
		s, ok := tasks.ParseStatus(c.status)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return f, exitcode.UserError
		}
		f.Status = string(s)
	}
	if c.priority != "" && c.priority != tasks.All {
		p, ok := tasks.ParsePriority(c.priority)
		if !ok {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority)
			return f, exitcode.UserError
		}
		f.Priority = string(p)
	}
	return f, exitcode.Success
}
