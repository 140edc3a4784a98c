package fxadmin

import (
	"github.com/cccteam/ccc/accesstypes"
	"github.com/cccteam/fxadmin/authstate"
)

// IsAuthenticated reports whether a signed-in account exists. It reads the
// account cache directly, so it is accurate even before the state store has
// settled.
func (s *Session) IsAuthenticated() bool {
	if !s.bridge.Interactive() {
		return false
	}

	return len(s.bridge.Accounts()) > 0
}

// CurrentUser returns the signed-in user, or nil when there is none.
func (s *Session) CurrentUser() *authstate.User {
	if !s.bridge.Interactive() {
		return nil
	}

	accounts := s.bridge.Accounts()
	if len(accounts) == 0 {
		return nil
	}

	return mapAccount(accounts[0])
}

// UserEmail returns the signed-in user's email, or "" when there is none.
func (s *Session) UserEmail() string {
	user := s.CurrentUser()
	if user == nil {
		return ""
	}

	return user.Email
}

// UserName returns the signed-in user's display name, falling back to the
// email when the directory has no name on file.
func (s *Session) UserName() string {
	user := s.CurrentUser()
	if user == nil {
		return ""
	}
	if user.Name != "" {
		return user.Name
	}

	return user.Email
}

// HasRole reports whether the signed-in user holds the role.
func (s *Session) HasRole(role accesstypes.Role) bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}

	return user.HasRole(role)
}

// HasAnyRole reports whether the signed-in user holds at least one of the
// roles.
func (s *Session) HasAnyRole(roles ...accesstypes.Role) bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}

	for _, role := range roles {
		if user.HasRole(role) {
			return true
		}
	}

	return false
}

// CanEdit reports whether the signed-in user may modify reference data. A
// user holding the Viewer role is read-only regardless of any other roles.
func (s *Session) CanEdit() bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}

	return !user.HasRole(ViewerRole)
}
