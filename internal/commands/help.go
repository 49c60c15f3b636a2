package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-9s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                   Show the dashboard (same as list)
  taskflow list [common flags] [--search <text>] [--status <s>] [--priority <p>]
  taskflow add [common flags] [--description <d>] [--priority <p>] [--status <s>] <title...>
  taskflow edit [common flags] [--title <t>] [--description <d>] [--status <s>] [--priority <p>] <ref>
  taskflow status [common flags] <ref>      Cycle Pending -> In Progress -> Completed
  taskflow rm [common flags] [--yes] <ref>
  taskflow login [common flags] [--email <e>] [--password <p>]
  taskflow register [common flags] [--email <e>] [--password <p>]
  taskflow logout [common flags]
  taskflow whoami [common flags]
  taskflow help
  taskflow version

A <ref> is a task id or a unique prefix of one.
The password may also be given in TASKFLOW_PASSWORD.

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the task API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
