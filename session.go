package fxadmin

import (
	"context"

	"github.com/cccteam/ccc"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
)

// LoginOptions customize an interactive login. The zero value uses the
// session's default scopes with no prompt override.
type LoginOptions struct {
	Scopes    []string
	Prompt    string
	LoginHint string
}

// LogoutOptions customize an interactive logout.
type LogoutOptions struct {
	PostLogoutRedirectURI string
}

// Login runs an interactive login and waits for its outcome. The session
// state transitions to authenticated on success and to the error state on
// failure. While the login runs, the loading flag is raised on top of the
// existing state, so observers can still see what the session was before.
func (s *Session) Login(ctx context.Context, opts *LoginOptions) (*azuread.LoginResult, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	if !s.bridge.Interactive() {
		return nil, notBrowserError(msgBrowserOnly)
	}

	s.setLoading(true)

	result, err := s.bridge.LoginInteractive(ctx, azuread.LoginRequest{
		Mode:      azuread.ModePopup,
		Scopes:    s.loginScopes(opts),
		Prompt:    prompt(opts),
		LoginHint: loginHint(opts),
	})
	if err != nil {
		authErr := newAuthError(err)
		s.store.Replace(authstate.State{Status: authstate.StatusError, Error: authErr})

		return nil, authErr
	}

	s.store.Replace(authstate.State{Status: authstate.StatusAuthenticated, User: mapAccount(result.Account)})
	logger.FromCtx(ctx).Infof("Session authenticated for %s", result.Account.Username)

	return result, nil
}

// LoginRedirect starts an interactive login without waiting for its outcome.
// The outcome is consumed by CompleteRedirectFlow; until then the loading
// flag stays raised. Outside an interactive environment this is a no-op.
func (s *Session) LoginRedirect(ctx context.Context, opts *LoginOptions) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	if !s.bridge.Interactive() {
		return
	}

	s.setLoading(true)

	if _, err := s.bridge.LoginInteractive(ctx, azuread.LoginRequest{
		Mode:      azuread.ModeRedirect,
		Scopes:    s.loginScopes(opts),
		Prompt:    prompt(opts),
		LoginHint: loginHint(opts),
	}); err != nil {
		s.store.Replace(authstate.State{Status: authstate.StatusError, Error: newAuthError(err)})
	}
}

// CompleteRedirectFlow consumes the outcome of a login started in redirect
// mode and settles the session state from it. It must be called once during
// application startup, after New. It returns nil when no redirect login was
// in flight.
func (s *Session) CompleteRedirectFlow(ctx context.Context) (*azuread.LoginResult, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	if !s.bridge.Interactive() {
		return nil, nil
	}

	result, err := s.bridge.CompleteRedirectFlow(ctx)
	if err != nil {
		authErr := newAuthError(err)
		s.store.Replace(authstate.State{Status: authstate.StatusError, Error: authErr})

		return nil, authErr
	}

	if result != nil {
		s.store.Replace(authstate.State{Status: authstate.StatusAuthenticated, User: mapAccount(result.Account)})
		logger.FromCtx(ctx).Infof("Session authenticated for %s", result.Account.Username)

		return result, nil
	}

	s.refreshState()

	return nil, nil
}

// Logout ends the session. The local state flips to unauthenticated before
// the provider is contacted, so no observer can act on a stale authenticated
// state while the browser navigates away. Outside an interactive environment
// or without a signed-in account this is a no-op.
func (s *Session) Logout(ctx context.Context, opts *LogoutOptions) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	if !s.bridge.Interactive() {
		return nil
	}

	accounts := s.bridge.Accounts()
	if len(accounts) == 0 {
		return nil
	}

	s.store.Replace(authstate.State{Status: authstate.StatusUnauthenticated})

	uri := s.postLogoutRedirectURI
	if opts != nil && opts.PostLogoutRedirectURI != "" {
		uri = opts.PostLogoutRedirectURI
	}

	if err := s.bridge.LogoutInteractive(ctx, accounts[0], azuread.LogoutRequest{PostLogoutRedirectURI: uri}); err != nil {
		return errors.Wrap(err, "azuread.Authenticator.LogoutInteractive()")
	}
	logger.FromCtx(ctx).Infof("User %s signed out", accounts[0].Username)

	return nil
}

// AccessToken returns an access token for the signed-in account without user
// interaction where possible. Transient failures are retried twice with a
// one second pause between attempts. When silent acquisition ultimately
// fails because the provider demands interaction, a redirect login is
// started as a side effect and the failure is still returned to the caller.
func (s *Session) AccessToken(ctx context.Context, scopes ...string) (*azuread.TokenResult, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	if !s.bridge.Interactive() {
		return nil, notBrowserError(msgTokenBrowser)
	}

	accounts := s.bridge.Accounts()
	if len(accounts) == 0 {
		return nil, noAccountError()
	}

	if len(scopes) == 0 {
		scopes = s.scopes
	}

	var result *azuread.TokenResult
	var err error
	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			if serr := s.sleep(ctx, s.retryDelay); serr != nil {
				return nil, serr
			}
			logger.FromCtx(ctx).Infof("Retrying token acquisition (%d/%d)", attempt, s.retryAttempts)
		}

		result, err = s.bridge.AcquireTokenSilently(ctx, scopes, accounts[0])
		if err == nil {
			return result, nil
		}
	}

	if azuread.IsInteractionRequired(err) {
		// The re-login is a side effect; this call still fails so the caller
		// does not block on the interactive flow.
		s.LoginRedirect(ctx, &LoginOptions{Scopes: scopes})
	}

	return nil, newAuthError(err)
}

// setLoading raises or clears the loading flag on top of the current state.
// Status, user and error are preserved, so a re-login after a failure keeps
// the previous error visible while it runs.
func (s *Session) setLoading(loading bool) {
	st := s.store.Current()
	st.IsLoading = loading
	s.store.Replace(st)
}

func (s *Session) loginScopes(opts *LoginOptions) []string {
	if opts != nil && len(opts.Scopes) > 0 {
		return opts.Scopes
	}

	return s.scopes
}

func prompt(opts *LoginOptions) string {
	if opts == nil {
		return ""
	}

	return opts.Prompt
}

func loginHint(opts *LoginOptions) string {
	if opts == nil {
		return ""
	}

	return opts.LoginHint
}
