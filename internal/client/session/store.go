// Package session persists the token pair between runs.
//
// A Store is an explicit, injectable replacement for globally shared client
// storage: the login flow reads and writes tokens only through it, so
// concurrent writers and failures are visible and testable.
package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// Fixed storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("session store closed")

// Store is a string key/value store.
//
// Get returns ("", nil) for absent keys. SetTokens overwrites both token keys
// atomically. Clear removes every key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetTokens(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
	Close() error
}

// LoadTokens reads both token keys. Missing keys come back empty.
func LoadTokens(ctx context.Context, s Store) (models.TokenPair, error) {
	access, err := s.Get(ctx, KeyAccessToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.Get(ctx, KeyRefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
