package services

import (
	"fmt"

	"github.com/dmitrijs2005/loginflow/internal/client/client"
	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// User-facing status messages.
const (
	MsgSigningIn         = "Signing in..."
	MsgNoAccessToken     = "Login succeeded but no access token returned"
	MsgFetchingProfile   = "Login successful — fetching profile..."
	MsgProfileFailed     = "Logged in, but failed to fetch profile"
	MsgNetworkError      = "Network error — check the log"
	MsgMalformedResponse = "Login failed: invalid response from server"
	MsgSessionNotSaved   = "Login succeeded but the session could not be saved"
	MsgNotLoggedIn       = "Not logged in"
	MsgLoggedOut         = "Logged out"
	MsgSessionRefreshed  = "Session refreshed"
	MsgNoRefreshToken    = "No refresh token stored; log in again"
	MsgRefreshNoAccess   = "Refresh succeeded but no access token returned"
	MsgSessionUnreadable = "Could not read the stored session"
	MsgSessionNotCleared = "Could not clear the stored session"
	msgLoginFailedFormat = "Login failed (%d)"
	msgRefreshFailedFmt  = "Refresh failed (%d)"
	msgWelcomeFormat     = "Welcome, %s"
	msgWelcomeAnonymous  = "Welcome"
)

// Status is one update of the status line.
type Status struct {
	Message string
	IsError bool
}

// StatusReporter shows status updates to the user. Report must not block.
type StatusReporter interface {
	Report(Status)
}

// ReporterFunc adapts a function to StatusReporter.
type ReporterFunc func(Status)

func (f ReporterFunc) Report(s Status) { f(s) }

// rejectionMessage picks the text for a rejected request: the server's
// detail or raw JSON when there is one, otherwise format with the status.
func rejectionMessage(apiErr *client.APIError, format string) string {
	if apiErr.Source == client.SourceStatus || apiErr.Detail == "" {
		return fmt.Sprintf(format, apiErr.StatusCode)
	}
	return apiErr.Detail
}

func welcomeMessage(p *models.Profile) string {
	if name := p.DisplayName(); name != "" {
		return fmt.Sprintf(msgWelcomeFormat, name)
	}
	return msgWelcomeAnonymous
}
