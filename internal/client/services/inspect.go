package services

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/loginflow/internal/client/session"
)

// SessionInfo summarises the stored session. Claims come from the access
// token without signature verification; they are informational only.
type SessionInfo struct {
	LoggedIn        bool       `json:"logged_in"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	Subject         string     `json:"subject,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	TokenType       string     `json:"token_type,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Expired         bool       `json:"expired"`
}

// Inspect reports what the session store holds.
func (f *LoginFlow) Inspect(ctx context.Context) (SessionInfo, error) {
	return InspectStore(ctx, f.store, time.Now())
}

// InspectStore is Inspect against an arbitrary store and clock.
func InspectStore(ctx context.Context, store session.Store, now time.Time) (SessionInfo, error) {
	pair, err := session.LoadTokens(ctx, store)
	if err != nil {
		return SessionInfo{}, err
	}

	info := SessionInfo{
		LoggedIn:        pair.Access != "",
		HasRefreshToken: pair.Refresh != "",
	}
	if pair.Access != "" {
		readClaims(pair.Access, now, &info)
	}
	return info, nil
}

// readClaims fills info from a JWT access token. Opaque tokens are left alone.
func readClaims(token string, now time.Time, info *SessionInfo) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.UTC()
		info.ExpiresAt = &t
		info.Expired = !now.Before(t)
	}
	info.UserID = claimString(claims["user_id"])
	info.TokenType = claimString(claims["token_type"])
}

func claimString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
