package azuread

import (
	"context"
	"time"

	"github.com/cccteam/fxadmin/tokencache"
)

// LoginMode selects how an interactive login completes.
type LoginMode string

const (
	// ModeRedirect opens the system browser and returns immediately; the
	// result lands through the loopback callback and is observable via
	// CompleteRedirectFlow and the interaction-done signal.
	ModeRedirect LoginMode = "redirect"
	// ModePopup opens the system browser and waits for the callback,
	// returning the login result inline.
	ModePopup LoginMode = "popup"
)

// LoginRequest describes an interactive login.
type LoginRequest struct {
	Mode      LoginMode
	Scopes    []string
	Prompt    string
	LoginHint string
}

// LogoutRequest describes an interactive logout.
type LogoutRequest struct {
	PostLogoutRedirectURI string
}

// LoginResult is a completed interactive login.
type LoginResult struct {
	Account     tokencache.Account
	AccessToken string
	IDToken     string
	ExpiresOn   time.Time
}

// TokenResult is a completed silent token acquisition.
type TokenResult struct {
	Account     tokencache.Account
	AccessToken string
	ExpiresOn   time.Time
}

// Authenticator is the identity-provider bridge. Implementations normalize
// provider outcomes and errors into the domain's result types. Every
// operation fails fast with ErrCodeNotBrowser when no interactive browser
// environment is available.
type Authenticator interface {
	// CompleteRedirectFlow consumes the result of a redirect-mode login that
	// completed but has not been observed yet. It returns nil when no
	// redirect flow was in flight.
	CompleteRedirectFlow(ctx context.Context) (*LoginResult, error)
	// LoginInteractive runs an interactive login. In ModeRedirect the
	// returned result is always nil; see CompleteRedirectFlow.
	LoginInteractive(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// AcquireTokenSilently returns a token from the cache or via the refresh
	// token grant. It fails with an interaction-required error when silent
	// renewal is impossible.
	AcquireTokenSilently(ctx context.Context, scopes []string, account tokencache.Account) (*TokenResult, error)
	// Accounts returns the locally cached accounts in order. The first
	// account is the current one.
	Accounts() []tokencache.Account
	// LogoutInteractive removes the account from the local cache and
	// navigates the browser to the provider's end-session endpoint.
	LogoutInteractive(ctx context.Context, account tokencache.Account, req LogoutRequest) error
	// Interactive reports whether an interactive browser environment is
	// available.
	Interactive() bool
	// OnInteractionDone registers fn to run each time an interactive flow
	// finishes (successfully or not).
	OnInteractionDone(fn func()) (cancel func())
}
