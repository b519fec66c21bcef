package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Profile is the user record returned by the protected "get me" endpoint.
// Every field is optional.
type Profile struct {
	Email    string    `json:"email,omitempty"`
	Username string    `json:"username,omitempty"`
	ID       ProfileID `json:"id,omitempty"`
}

// DisplayName picks the first non-empty of email, username and id.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.Email != "":
		return p.Email
	case p.Username != "":
		return p.Username
	default:
		return string(p.ID)
	}
}

// ProfileID holds an id the server may encode either as a JSON string or a
// JSON number. Numbers keep their literal form ("42", not "42.000000").
type ProfileID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ProfileID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProfileID(s)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("profile id must be a string or a number: %w", err)
	}
	*id = ProfileID(n.String())
	return nil
}

// MarshalJSON writes numeric ids back as numbers.
func (id ProfileID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" && strings.Trim(s, "0123456789-.eE+") == "" && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}
