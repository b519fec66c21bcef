package client

import (
	"context"

	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// API paths, relative to the configured base URL.
const (
	LoginPath   = "/api/v1/login/"
	ProfilePath = "/api/v1/get-me/"
	RefreshPath = "/api/v1/token/refresh/"
)

// Client is the authentication API contract used by the login flow.
type Client interface {
	// Login exchanges credentials for a token pair. A 2xx response is decoded
	// as is; callers must check that the access token is present.
	Login(ctx context.Context, creds models.Credentials) (*models.TokenPair, error)
	// GetMe fetches the profile of the user owning accessToken. A JSON null
	// body yields (nil, nil).
	GetMe(ctx context.Context, accessToken string) (*models.Profile, error)
	// Refresh exchanges a refresh token for a new access token. Refresh in the
	// result is empty unless the server rotates refresh tokens.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}
