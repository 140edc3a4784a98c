// Package tokencache persists provider accounts and their tokens on the
// client, filling the role the browser token cache plays for a single-page
// app. Accounts are ordered; the first account is the current one.
package tokencache

import (
	"time"
)

// Account identifies a signed-in provider account.
type Account struct {
	// HomeID is the provider's stable account identifier.
	HomeID   string   `json:"homeId"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles,omitempty"`
}

// Record is the cached token material for one account.
type Record struct {
	Account      Account   `json:"account"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	IDToken      string    `json:"idToken,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the cached access token is still usable, with a
// buffer so tokens are renewed before they expire on the wire.
func (r *Record) Valid(now time.Time) bool {
	if r == nil || r.AccessToken == "" {
		return false
	}

	return r.Expiry.After(now.Add(expiryDelta))
}

const expiryDelta = 5 * time.Minute

// Cache stores token records. Accounts are listed in the order they were
// first added.
type Cache interface {
	Accounts() []Account
	Get(homeID string) (*Record, bool)
	Put(r *Record) error
	Remove(homeID string) error
}
