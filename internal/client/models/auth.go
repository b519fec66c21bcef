// Package models defines client-side data models used by the loginflow CLI.
package models

import "strings"

// Credentials is what the user submits on login. It only lives for the
// duration of a single submit.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalize returns a copy with the username trimmed. The password is kept
// verbatim: leading and trailing spaces may be part of it.
func (c Credentials) Normalize() Credentials {
	return Credentials{Username: strings.TrimSpace(c.Username), Password: c.Password}
}

// TokenPair is the pair of credentials returned by a successful login.
//
// Access is required and must be a JSON string. Refresh is optional and
// defaults to "" when the server omits it.
type TokenPair struct {
	// Access authorizes requests to protected endpoints.
	Access string `json:"access"`
	// Refresh is used to mint new access tokens.
	Refresh string `json:"refresh,omitempty"`
}
