// Package authstate holds the authentication state for a running application
// instance and broadcasts state changes to subscribers.
package authstate

import (
	"fmt"
	"time"

	"github.com/cccteam/ccc/accesstypes"
)

// Status enumerates the authentication lifecycle states. Exactly one is
// active at any time.
type Status string

const (
	// StatusInitializing is the state before the first account check resolves.
	StatusInitializing Status = "initializing"
	// StatusAuthenticated indicates a signed-in user.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated indicates no signed-in user.
	StatusUnauthenticated Status = "unauthenticated"
	// StatusError indicates the last login or token operation failed.
	StatusError Status = "error"
)

// User is the authenticated user derived from the provider account.
type User struct {
	Email    string
	Name     string
	Username string
	Roles    []accesstypes.Role

	// Account is the underlying provider account object. It is borrowed from
	// the identity bridge for the lifetime of the session, never owned.
	Account any
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role accesstypes.Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// Code classifies authentication failures.
type Code string

const (
	// CodeNotBrowser indicates the operation was attempted outside an
	// interactive environment.
	CodeNotBrowser Code = "NOT_BROWSER"
	// CodeNoAccount indicates no account is cached locally.
	CodeNoAccount Code = "NO_ACCOUNT"
	// CodeInteractionRequired indicates silent token renewal is impossible
	// and an interactive login is needed.
	CodeInteractionRequired Code = "interaction_required"
	// CodeUnknown is used when the provider failure carries no code.
	CodeUnknown Code = "UNKNOWN_ERROR"
)

// Error is an authentication failure translated from the identity bridge.
// It is only constructed by the session controller.
type Error struct {
	Code      Code
	Message   string
	Details   string
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// State is the whole session state. Transitions are always whole-state
// replacements, so User and Error are never both present.
type State struct {
	Status    Status
	User      *User
	Error     *Error
	IsLoading bool
}
