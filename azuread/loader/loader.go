// Package loader contains interfaces for safely accessing an OIDC Provider.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/errors/v5"
	"golang.org/x/oauth2"
)

type loader struct {
	issuerURL    string
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       []string

	mu       sync.RWMutex
	provider *provider
}

// New creates a new OIDC loader. clientSecret is empty for public (native)
// clients, which rely on PKCE instead.
func New(issuerURL, clientID, clientSecret, redirectURL string, scopes []string) Loader {
	return &loader{
		issuerURL:    issuerURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		scopes:       scopes,
	}
}

// Provider returns the OIDC provider, performing discovery on first use.
func (l *loader) Provider(ctx context.Context) (Provider, error) {
	l.mu.RLock()
	if l.provider != nil {
		l.mu.RUnlock()

		return l.provider, nil
	}

	l.mu.RUnlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.provider != nil {
		return l.provider, nil
	}

	if err := l.newProvider(ctx); err != nil {
		return nil, errors.Wrap(err, "newProvider()")
	}

	return l.provider, nil
}

func (l *loader) newProvider(ctx context.Context) error {
	expire, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("oidc.NewProvider() timeout"))
	defer cancel()

	newProvider, err := oidc.NewProvider(expire, l.issuerURL)
	if err != nil {
		return errors.Wrap(err, "oidc.NewProvider()")
	}

	var discovery struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	// Discovery documents without an end_session_endpoint are valid; logout
	// then skips provider navigation.
	_ = newProvider.Claims(&discovery)

	scopes := append([]string{oidc.ScopeOpenID, "profile", "offline_access"}, l.scopes...)

	l.provider = &provider{
		provider:           newProvider,
		endSessionEndpoint: discovery.EndSessionEndpoint,
		config: oauth2.Config{
			ClientID:     l.clientID,
			ClientSecret: l.clientSecret,
			RedirectURL:  l.redirectURL,
			Endpoint:     newProvider.Endpoint(),
			Scopes:       scopes,
		},
	}

	return nil
}
