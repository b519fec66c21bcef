package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/loginflow/internal/buildinfo"
	"github.com/dmitrijs2005/loginflow/internal/client/services"
)

// statusReport is the output of the status command.
type statusReport struct {
	APIURL string `json:"api_url"`
	Store  string `json:"store"`
	services.SessionInfo
}

func newStatusCommand(o *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the session store holds",
		Long: `Show whether tokens are stored and, for JWT access tokens, the subject and
expiry read from the token. Claims are not verified.

Exits 0 when logged in and 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, jsonOutput, func(ctx context.Context, a *App) int {
				return a.runStatus(ctx, jsonOutput, time.Now())
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON instead of human-readable text")
	return cmd
}

func (a *App) runStatus(ctx context.Context, jsonOutput bool, now time.Time) int {
	info, err := services.InspectStore(ctx, a.store, now)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return ExitError
	}

	report := statusReport{APIURL: a.config.APIURL, Store: a.storeName(), SessionInfo: info}
	if jsonOutput {
		if err := writeJSON(a.out, report); err != nil {
			fmt.Fprintf(a.errOut, "Error: %v\n", err)
			return ExitError
		}
	} else {
		fmt.Fprintln(a.out, formatStatusHuman(report))
	}

	if !info.LoggedIn {
		return ExitFailure
	}
	return ExitOK
}

func formatStatusHuman(r statusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "API:           %s\n", r.APIURL)
	fmt.Fprintf(&b, "Store:         %s\n", r.Store)
	fmt.Fprintf(&b, "Logged in:     %s\n", yesNo(r.LoggedIn))
	fmt.Fprintf(&b, "Refresh token: %s", yesNo(r.HasRefreshToken))
	if r.Subject != "" {
		fmt.Fprintf(&b, "\nSubject:       %s", r.Subject)
	} else if r.UserID != "" {
		fmt.Fprintf(&b, "\nUser ID:       %s", r.UserID)
	}
	if r.ExpiresAt != nil {
		exp := r.ExpiresAt.Format(time.RFC3339)
		if r.Expired {
			exp += " (expired)"
		}
		fmt.Fprintf(&b, "\nExpires:       %s", exp)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func newVersionCommand(o *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return writeJSON(o.streams.Out, buildinfo.Get())
			}
			buildinfo.PrintBuildData(o.streams.Out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	return cmd
}
