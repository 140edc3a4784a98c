// Package fxadmin implements the authenticated client session for the
// exchange-rates administration API. One session exists per running
// application instance: the Session controller is constructed once at
// startup and passed explicitly to every component that needs session
// queries (CLI shell, HTTP transport, route guard).
package fxadmin

import (
	"context"
	"time"

	"github.com/cccteam/ccc/accesstypes"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/go-playground/errors/v5"
)

// ViewerRole is the read-only role. Users holding it cannot edit reference
// data.
const ViewerRole accesstypes.Role = "Viewer"

const (
	// tokenRetryAttempts is the number of extra silent-token attempts after
	// the first failure.
	tokenRetryAttempts = 2
	tokenRetryDelay    = time.Second
)

// Session orchestrates the identity bridge and owns all writes to the
// session state store.
type Session struct {
	bridge                azuread.Authenticator
	store                 *authstate.Store
	scopes                []string
	postLogoutRedirectURI string

	retryAttempts int
	retryDelay    time.Duration
	sleep         func(ctx context.Context, d time.Duration) error

	cancelWatch func()
}

// New constructs the Session and resolves the initial authentication state.
// Outside an interactive environment the state settles immediately on
// unauthenticated; otherwise the state is derived from the cached accounts
// now and again after every finished provider interaction.
func New(bridge azuread.Authenticator, opts ...Option) *Session {
	s := &Session{
		bridge:        bridge,
		store:         authstate.NewStore(),
		retryAttempts: tokenRetryAttempts,
		retryDelay:    tokenRetryDelay,
		sleep:         sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initialize()

	return s
}

func (s *Session) initialize() {
	if !s.bridge.Interactive() {
		s.store.Replace(authstate.State{Status: authstate.StatusUnauthenticated})

		return
	}

	s.cancelWatch = s.bridge.OnInteractionDone(s.refreshState)

	// One immediate derivation, independent of the interaction signal, so
	// the initial state is never missed when no interaction ever happens.
	s.refreshState()
}

// refreshState re-derives the session state from the cached accounts.
func (s *Session) refreshState() {
	accounts := s.bridge.Accounts()
	if len(accounts) > 0 {
		s.store.Replace(authstate.State{Status: authstate.StatusAuthenticated, User: mapAccount(accounts[0])})

		return
	}

	s.store.Replace(authstate.State{Status: authstate.StatusUnauthenticated})
}

// State returns the session state store for read access. Only the Session
// writes to it.
func (s *Session) State() *authstate.Store {
	return s.store
}

// Watch subscribes fn to session state changes, starting with the current
// state.
func (s *Session) Watch(fn func(authstate.State)) (cancel func()) {
	return s.store.Subscribe(fn)
}

// Close tears down the interaction watch and completes the state store.
// No state updates are delivered after Close returns.
func (s *Session) Close() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	s.store.Close()
}

func mapAccount(a tokencache.Account) *authstate.User {
	roles := make([]accesstypes.Role, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, accesstypes.Role(r))
	}

	name := a.Name
	if name == "" {
		name = a.Username
	}

	return &authstate.User{
		Email:    a.Username,
		Name:     name,
		Username: a.Username,
		Roles:    roles,
		Account:  a,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(context.Cause(ctx), "context done")
	}
}
