package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/loginflow/internal/client/services"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Profile(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
}

func newREPLCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, false, func(ctx context.Context, a *App) int {
				fmt.Fprintln(a.out, "loginflow (type 'help' for commands)")
				runREPL(ctx, a, a.promptStatus, a.in, a.out)
				return ExitOK
			})
		},
	}
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, on context cancellation, or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current session (from statusFn) and accepts:
//
//	help           show available commands
//	login          sign in (prompts for username and password)
//	profile        fetch the profile of the stored session
//	refresh        refresh the access token
//	status         show the stored session
//	logout         remove the stored tokens
//	exit | quit    leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own outcome through the status line. Commands read their own input
// from the same reader, so the loop never buffers ahead of them.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "loginflow%s> ", statusFn(ctx))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(w, "Available commands: profile, refresh, status, logout, login, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "profile", "me":
			_ = a.Profile(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "status":
			_ = a.Status(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	info, err := a.flow.Inspect(ctx)
	return err == nil && info.LoggedIn
}

// promptStatus renders the session for the prompt, e.g. " (alice)".
func (a *App) promptStatus(ctx context.Context) string {
	info, err := a.flow.Inspect(ctx)
	if err != nil || !info.LoggedIn {
		return ""
	}
	switch {
	case info.Expired:
		return " (expired)"
	case info.Subject != "":
		return " (" + info.Subject + ")"
	case info.UserID != "":
		return " (" + info.UserID + ")"
	}
	return " (logged in)"
}

// Login prompts for credentials and runs the login flow.
func (a *App) Login(ctx context.Context) error {
	creds, err := a.promptCredentials("")
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return err
	}
	_, err = a.flow.Submit(ctx, creds)
	return err
}

// Profile fetches and greets the stored session's user.
func (a *App) Profile(ctx context.Context) error {
	_, err := a.flow.ShowProfile(ctx)
	return err
}

// Refresh refreshes the access token.
func (a *App) Refresh(ctx context.Context) error {
	return a.flow.Refresh(ctx)
}

// Logout removes the stored tokens.
func (a *App) Logout(ctx context.Context) error {
	return a.flow.Logout(ctx)
}

// Status prints the stored session.
func (a *App) Status(ctx context.Context) error {
	info, err := a.flow.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, formatStatusHuman(statusReport{APIURL: a.config.APIURL, Store: a.storeName(), SessionInfo: info}))
	if !info.LoggedIn {
		return services.ErrNotLoggedIn
	}
	return nil
}

var _ execIface = (*App)(nil)
