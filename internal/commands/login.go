package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"taskflow/internal/api"
	"taskflow/internal/auth"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/nav"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// EnvPassword supplies the password when --password is not given.
const EnvPassword = "TASKFLOW_PASSWORD"

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// credentialFlags are shared by login and register.
type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.email, "email", "", "")
	fs.StringVar(&f.email, "e", "", "")
	fs.StringVar(&f.password, "password", "", "")
}

// resolve fills missing credentials from the environment and then from
// interactive prompts on in.
func (f *credentialFlags) resolve(in io.Reader, errOut io.Writer) (service.Credentials, error) {
	creds := service.Credentials{Email: f.email, Password: f.password}
	if creds.Password == "" {
		creds.Password = os.Getenv(EnvPassword)
	}
	if creds.Email != "" && creds.Password != "" {
		return creds, nil
	}
	if in == nil {
		return creds, errors.New("email and password required")
	}
	lines := bufio.NewReader(in)
	if creds.Email == "" {
		creds.Email = readLine(lines, errOut, "Email: ")
	}
	if creds.Password == "" {
		creds.Password = readPassword(in, lines, errOut)
	}
	if creds.Email == "" || creds.Password == "" {
		return creds, errors.New("email and password required")
	}
	return creds, nil
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, lines *bufio.Reader, w io.Writer) string {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(lines, w, "Password: ")
	}
	fmt.Fprint(w, "Password: ")
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return ""
	}
	return string(pw)
}

func readLine(r *bufio.Reader, w io.Writer, prompt string) string {
	fmt.Fprint(w, prompt)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// LoginCmd implements the login command.
type LoginCmd struct {
	creds credentialFlags
}

// SetCredentials sets the credential flags (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.creds = credentialFlags{email: email, password: password}
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the task API" }
func (c *LoginCmd) Usage() string     { return "taskflow login [--email <e>] [--password <p>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.creds.register(fs)
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return runAuth(ctx, cfg, env, &c.creds, (*auth.Flow).Login, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	creds credentialFlags
}

// SetCredentials sets the credential flags (for testing).
func (c *RegisterCmd) SetCredentials(email, password string) {
	c.creds = credentialFlags{email: email, password: password}
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string     { return "taskflow register [--email <e>] [--password <p>]" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.creds.register(fs)
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	return runAuth(ctx, cfg, env, &c.creds, (*auth.Flow).Register, out, errOut)
}

type authAttempt func(f *auth.Flow, ctx context.Context, creds service.Credentials) (session.Session, error)

// runAuth is the shared implementation for login and register.
func runAuth(ctx context.Context, cfg *config.Config, env *Env, flags *credentialFlags, attempt authAttempt, out, errOut io.Writer) int {
	creds, err := flags.resolve(env.In, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	rec := &nav.Recorder{}
	flow := auth.New(env.Service, env.Store, rec, env.Log)
	sess, err := attempt(flow, ctx, creds)
	if err != nil {
		var ae *auth.Error
		if errors.As(err, &ae) && api.IsTransport(ae.Err) {
			fmt.Fprintf(errOut, "error: backend error: %v\n", ae.Err)
			return exitcode.BackendError
		}
		fmt.Fprintf(errOut, "error: %s\n", flow.Message())
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", sess.Email)
	}
	return exitcode.Success
}
