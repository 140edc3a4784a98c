// Package azuread implements the identity-provider bridge for Azure AD using
// the OIDC Authorization Code Flow with PKCE (Proof Key for Code Exchange).
// Interactive flows run through the system browser with a loopback redirect;
// silent acquisition is served from the local token cache and the refresh
// token grant.
package azuread

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cccteam/fxadmin/azuread/loader"
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/go-playground/errors/v5"
	"github.com/gofrs/uuid"
	"golang.org/x/oauth2"
)

const (
	// loginRedirectTimeout bounds the wait for the browser to come back to
	// the loopback redirect.
	loginRedirectTimeout = time.Minute
	// silentTokenTimeout bounds the refresh token grant.
	silentTokenTimeout = 10 * time.Second
)

var _ Authenticator = &OIDC{}

// OIDC implements the Authenticator interface against an OIDC provider.
type OIDC struct {
	loader.Loader
	cache        tokencache.Cache
	opener       Opener
	redirectURL  string
	loginTimeout time.Duration
	now          func() time.Time

	mu         sync.Mutex
	inflight   bool
	pending    *LoginResult
	pendingErr error
	watchers   map[int]func()
	nextWatch  int

	accountMu sync.Map
}

// Option configures an OIDC bridge.
type Option func(*OIDC)

// WithOpener replaces the system browser opener.
func WithOpener(opener Opener) Option {
	return func(o *OIDC) {
		o.opener = opener
	}
}

// WithLoginTimeout sets the wait for the login redirect. (default: 1m)
func WithLoginTimeout(d time.Duration) Option {
	return func(o *OIDC) {
		o.loginTimeout = d
	}
}

// New returns a new OIDC bridge. clientSecret is empty for public (native)
// clients.
func New(cache tokencache.Cache, issuerURL, clientID, clientSecret, redirectURL string, scopes []string, opts ...Option) *OIDC {
	o := &OIDC{
		Loader:       loader.New(issuerURL, clientID, clientSecret, redirectURL, scopes),
		cache:        cache,
		opener:       systemOpener{},
		redirectURL:  redirectURL,
		loginTimeout: loginRedirectTimeout,
		now:          time.Now,
		watchers:     make(map[int]func()),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Interactive reports whether an interactive browser environment is available.
func (o *OIDC) Interactive() bool {
	return o.opener != nil && o.opener.Available()
}

// Accounts returns the locally cached accounts in order, recovering role
// claims from the cached ID token when the record predates role storage.
func (o *OIDC) Accounts() []tokencache.Account {
	accounts := o.cache.Accounts()
	for i, a := range accounts {
		if len(a.Roles) != 0 {
			continue
		}
		if rec, ok := o.cache.Get(a.HomeID); ok {
			accounts[i].Roles = rolesFromIDToken(rec.IDToken)
		}
	}

	return accounts
}

// LoginInteractive runs an interactive login through the system browser.
func (o *OIDC) LoginInteractive(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if !o.Interactive() {
		return nil, notBrowserError()
	}

	o.mu.Lock()
	if o.inflight {
		o.mu.Unlock()

		return nil, &Error{Code: "interaction_in_progress", Description: "another interactive login is already running"}
	}
	o.inflight = true
	o.mu.Unlock()

	f, authURL, err := o.prepareFlow(ctx, req)
	if err != nil {
		o.finishInteraction()

		return nil, err
	}

	if err := o.opener.Open(authURL); err != nil {
		f.srv.close()
		o.finishInteraction()

		return nil, errors.Wrap(err, "azuread.Opener.Open()")
	}

	if req.Mode == ModePopup {
		result, err := o.awaitFlow(ctx, f)
		o.finishInteraction()

		return result, err
	}

	// Redirect mode: the caller gets nothing back; the outcome is held for
	// CompleteRedirectFlow and announced through the interaction signal.
	go func() {
		result, err := o.awaitFlow(context.WithoutCancel(ctx), f)

		o.mu.Lock()
		o.pending, o.pendingErr = result, err
		o.mu.Unlock()

		o.finishInteraction()
	}()

	return nil, nil
}

// CompleteRedirectFlow consumes the outcome of a finished redirect-mode
// login. It returns nil when no redirect flow was in flight.
func (o *OIDC) CompleteRedirectFlow(_ context.Context) (*LoginResult, error) {
	if !o.Interactive() {
		return nil, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	result, err := o.pending, o.pendingErr
	o.pending, o.pendingErr = nil, nil

	return result, err
}

// AcquireTokenSilently returns a token for the account without user
// interaction. The cached access token is used while fresh; otherwise the
// refresh token grant renews it. Scopes are fixed by the client
// configuration; the requested scopes must be covered by them.
//
// Concurrent calls for the same account are serialized so the provider sees
// a single refresh.
func (o *OIDC) AcquireTokenSilently(ctx context.Context, _ []string, account tokencache.Account) (*TokenResult, error) {
	if !o.Interactive() {
		return nil, notBrowserError()
	}

	mu := o.accountLock(account.HomeID)
	mu.Lock()
	defer mu.Unlock()

	rec, ok := o.cache.Get(account.HomeID)
	if !ok {
		return nil, interactionRequiredError("no cached tokens for account")
	}

	if rec.Valid(o.now()) {
		return &TokenResult{Account: rec.Account, AccessToken: rec.AccessToken, ExpiresOn: rec.Expiry}, nil
	}

	if rec.RefreshToken == "" {
		return nil, interactionRequiredError("no refresh token cached for account")
	}

	provider, err := o.Provider(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loader.Loader.Provider()")
	}

	expire, cancel := context.WithTimeoutCause(ctx, silentTokenTimeout, errors.New("silent token acquisition timeout"))
	defer cancel()

	token, err := provider.TokenSource(expire, &oauth2.Token{RefreshToken: rec.RefreshToken}).Token()
	if err != nil {
		return nil, normalizeTokenError(err)
	}

	rec.AccessToken = token.AccessToken
	rec.Expiry = token.Expiry
	if token.RefreshToken != "" {
		rec.RefreshToken = token.RefreshToken
	}
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		rec.IDToken = raw
	}
	if err := o.cache.Put(rec); err != nil {
		return nil, errors.Wrap(err, "tokencache.Cache.Put()")
	}

	return &TokenResult{Account: rec.Account, AccessToken: rec.AccessToken, ExpiresOn: rec.Expiry}, nil
}

// LogoutInteractive removes the account from the local cache and navigates
// the browser to the provider's end-session endpoint.
func (o *OIDC) LogoutInteractive(ctx context.Context, account tokencache.Account, req LogoutRequest) error {
	if !o.Interactive() {
		return notBrowserError()
	}

	if err := o.cache.Remove(account.HomeID); err != nil {
		return errors.Wrap(err, "tokencache.Cache.Remove()")
	}

	provider, err := o.Provider(ctx)
	if err != nil {
		return errors.Wrap(err, "loader.Loader.Provider()")
	}

	endpoint := provider.EndSessionEndpoint()
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "url.Parse()")
	}
	q := u.Query()
	q.Set("logout_hint", account.Username)
	if req.PostLogoutRedirectURI != "" {
		q.Set("post_logout_redirect_uri", req.PostLogoutRedirectURI)
	}
	u.RawQuery = q.Encode()

	if err := o.opener.Open(u.String()); err != nil {
		return errors.Wrap(err, "azuread.Opener.Open()")
	}

	return nil
}

// OnInteractionDone registers fn to run each time an interactive flow
// finishes.
func (o *OIDC) OnInteractionDone(fn func()) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextWatch
	o.nextWatch++
	o.watchers[id] = fn

	return func() {
		o.mu.Lock()
		delete(o.watchers, id)
		o.mu.Unlock()
	}
}

// prepareFlow builds the in-flight flow state and its authorization URL, and
// starts the loopback server that will receive the redirect.
func (o *OIDC) prepareFlow(ctx context.Context, req LoginRequest) (*flow, string, error) {
	provider, err := o.Provider(ctx)
	if err != nil {
		return nil, "", errors.Wrap(err, "loader.Loader.Provider()")
	}

	// Use a random string as the state to protect against CSRF attacks
	state, err := uuid.NewV4()
	if err != nil {
		return nil, "", errors.Wrap(err, "uuid.NewV4()")
	}

	f := &flow{
		state:    state.String(),
		verifier: oauth2.GenerateVerifier(),
		resultC:  make(chan flowOutcome, 1),
	}

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(f.verifier)}
	if req.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", req.Prompt))
	}
	if req.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", req.LoginHint))
	}
	if len(req.Scopes) > 0 {
		scopes := append([]string{"openid", "profile", "offline_access"}, req.Scopes...)
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(scopes, " ")))
	}

	srv, err := o.startLoopback(provider, f)
	if err != nil {
		return nil, "", err
	}
	f.srv = srv

	return f, provider.AuthCodeURL(f.state, opts...), nil
}

// awaitFlow waits for the loopback callback to deliver the flow outcome.
func (o *OIDC) awaitFlow(ctx context.Context, f *flow) (*LoginResult, error) {
	defer f.srv.close()

	timer := time.NewTimer(o.loginTimeout)
	defer timer.Stop()

	select {
	case out := <-f.resultC:
		return out.result, out.err
	case <-timer.C:
		return nil, &Error{Code: "timeout", Description: "timed out waiting for the login redirect"}
	case <-ctx.Done():
		return nil, errors.Wrap(context.Cause(ctx), "login cancelled")
	}
}

func (o *OIDC) finishInteraction() {
	o.mu.Lock()
	o.inflight = false
	watchers := make([]func(), 0, len(o.watchers))
	for _, fn := range o.watchers {
		watchers = append(watchers, fn)
	}
	o.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
}

func (o *OIDC) accountLock(homeID string) *sync.Mutex {
	mu, _ := o.accountMu.LoadOrStore(homeID, &sync.Mutex{})

	return mu.(*sync.Mutex)
}
