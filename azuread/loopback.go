package azuread

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/fxadmin/azuread/loader"
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/errors/v5"
	"golang.org/x/oauth2"
)

// flow is one in-flight interactive login.
type flow struct {
	state    string
	verifier string
	resultC  chan flowOutcome
	srv      *loopbackServer
}

type flowOutcome struct {
	result *LoginResult
	err    error
}

// deliver hands the outcome to the waiter. Only the first outcome counts;
// stray re-invocations of the callback are dropped.
func (f *flow) deliver(out flowOutcome) {
	select {
	case f.resultC <- out:
	default:
	}
}

// loopbackServer serves the redirect URL on the loopback interface for the
// duration of one interactive flow.
type loopbackServer struct {
	srv       *http.Server
	closeOnce sync.Once
}

func (s *loopbackServer) close() {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctx)
	})
}

func (o *OIDC) startLoopback(provider loader.Provider, f *flow) (*loopbackServer, error) {
	u, err := url.Parse(o.redirectURL)
	if err != nil {
		return nil, errors.Wrap(err, "url.Parse()")
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, errors.Wrap(err, "net.Listen()")
	}

	r := chi.NewRouter()
	r.Get(path, o.callbackHandler(provider, f))

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()

	return &loopbackServer{srv: srv}, nil
}

const loginCompleteHTML = `<!DOCTYPE html>
<html><body><p>Autenticaci&oacute;n completada. Puede cerrar esta ventana.</p></body></html>
`

// callbackHandler is the handler for the redirect from the OIDC auth provider.
func (o *OIDC) callbackHandler(provider loader.Provider, f *flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		result, err := o.completeCallback(ctx, provider, f, r)
		if err != nil {
			f.deliver(flowOutcome{err: err})
			_ = httpio.NewEncoder(w).ClientMessage(ctx, err)

			return
		}

		f.deliver(flowOutcome{result: result})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, loginCompleteHTML)
	}
}

// completeCallback performs the necessary verification and processing of the
// OIDC redirect request and caches the resulting tokens.
func (o *OIDC) completeCallback(ctx context.Context, provider loader.Provider, f *flow, r *http.Request) (*LoginResult, error) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		return nil, &Error{Code: errCode, Description: q.Get("error_description"), SubError: q.Get("suberror")}
	}

	// Validate state parameter
	if q.Get("state") != f.state {
		return nil, httpio.NewForbiddenMessage("Invalid 'state' parameter value")
	}

	oauth2Token, err := provider.Exchange(ctx, q.Get("code"), oauth2.VerifierOption(f.verifier))
	if err != nil {
		return nil, httpio.NewInternalServerErrorMessageWithError(err, "Failed to exchange token")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, httpio.NewInternalServerErrorMessage("No id_token in token response")
	}

	idToken, err := provider.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, httpio.NewInternalServerErrorMessageWithError(err, "Failed to verify ID token")
	}

	claims := idClaims{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, httpio.NewInternalServerErrorMessageWithError(err, "Failed to parse ID token claims")
	}

	account := claims.account(idToken.Subject)
	record := &tokencache.Record{
		Account:      account,
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		IDToken:      rawIDToken,
		Expiry:       oauth2Token.Expiry,
	}
	if err := o.cache.Put(record); err != nil {
		return nil, errors.Wrap(err, "tokencache.Cache.Put()")
	}

	logger.FromCtx(ctx).Infof("User %s signed in", account.Username)

	return &LoginResult{
		Account:     account,
		AccessToken: oauth2Token.AccessToken,
		IDToken:     rawIDToken,
		ExpiresOn:   oauth2Token.Expiry,
	}, nil
}
