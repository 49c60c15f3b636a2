// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// Env carries the dependencies a command runs against.
type Env struct {
	// Service talks to the task API.
	Service service.Service

	// Store holds the session token and email.
	Store session.Store

	// Log receives diagnostics. Never nil once built by the dispatcher.
	Log *log.Logger

	// In is read for interactive prompts (credentials, delete confirmation).
	In io.Reader

	// Closer releases backend resources after the command ran. Optional.
	Closer io.Closer
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// env is nil for commands that touch neither the API nor the session.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int
}
