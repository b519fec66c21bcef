package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type loginOptions struct {
	username      string
	passwordStdin bool
}

func newLoginCommand(o *rootOptions) *cobra.Command {
	lo := &loginOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and fetch your profile",
		Long: `Sign in with a username and password, store the returned tokens and
fetch your profile.

On a terminal an interactive form asks for the missing fields. Scripts can
pipe the password with --password-stdin:

  echo "$PASSWORD" | loginflow login --username alice --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, false, func(ctx context.Context, a *App) int {
				return a.runLogin(ctx, lo)
			})
		},
	}
	cmd.Flags().StringVarP(&lo.username, "username", "u", "", "username")
	cmd.Flags().BoolVar(&lo.passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// runLogin collects credentials and submits them. It returns the exit code.
func (a *App) runLogin(ctx context.Context, lo *loginOptions) int {
	creds, err := a.readCredentials(ctx, lo.username, lo.passwordStdin)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return ExitError
	}

	_, err = a.flow.Submit(ctx, creds)
	return exitCodeFor(err)
}

func newProfileCommand(o *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Fetch the profile of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, jsonOutput, func(ctx context.Context, a *App) int {
				return a.runProfile(ctx, jsonOutput)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the profile as JSON")
	return cmd
}

func (a *App) runProfile(ctx context.Context, jsonOutput bool) int {
	p, err := a.flow.ShowProfile(ctx)
	if err != nil {
		return exitCodeFor(err)
	}
	if jsonOutput {
		if err := writeJSON(a.out, p); err != nil {
			fmt.Fprintf(a.errOut, "Error: %v\n", err)
			return ExitError
		}
	}
	return ExitOK
}

func newRefreshCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, false, func(ctx context.Context, a *App) int {
				return exitCodeFor(a.flow.Refresh(ctx))
			})
		},
	}
}

func newLogoutCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, false, func(ctx context.Context, a *App) int {
				return exitCodeFor(a.flow.Logout(ctx))
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
