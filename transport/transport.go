// Package transport provides the authenticated http.RoundTripper for calls
// to the administration API. It attaches bearer tokens to API requests,
// retries transient failures, and reacts to terminal authorization failures
// by starting a re-login.
package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cccteam/fxadmin"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// SkipAuthHeader marks a request that must go out without a bearer token
// even though it targets the API. The header is stripped before sending.
const SkipAuthHeader = "X-Skip-Auth"

const (
	apiPathPrefix = "/api/"

	// maxRetries is the number of extra attempts after the first failure.
	maxRetries = 2
)

// publicEndpoints never get a bearer token attached.
var publicEndpoints = []string{"/login", "/health", "/public"}

// Sessioner is the subset of the session controller the transport needs.
type Sessioner interface {
	IsAuthenticated() bool
	AccessToken(ctx context.Context, scopes ...string) (*azuread.TokenResult, error)
	LoginRedirect(ctx context.Context, opts *fxadmin.LoginOptions)
}

// Transport is an http.RoundTripper that authenticates API requests.
type Transport struct {
	base    http.RoundTripper
	session Sessioner
	scopes  []string
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option is a function that can set an option on a Transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper. (default: http.DefaultTransport)
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

// WithScopes sets the scopes requested for the bearer token.
func WithScopes(scopes []string) Option {
	return func(t *Transport) {
		t.scopes = scopes
	}
}

// New returns a Transport wired to the session.
func New(session Sessioner, opts ...Option) *Transport {
	t := &Transport{
		base:    http.DefaultTransport,
		session: session,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := otel.Tracer("transport").Start(req.Context(), "Transport.RoundTrip()")
	defer span.End()

	out := req.Clone(ctx)

	switch {
	case out.Header.Get(SkipAuthHeader) != "":
		out.Header.Del(SkipAuthHeader)
	case !t.needsAuth(out):
	case !t.session.IsAuthenticated():
		// Unauthenticated API calls go out as-is; the server decides.
	default:
		token, err := t.session.AccessToken(ctx, t.scopes...)
		if err != nil {
			if sessionLost(err) {
				t.session.LoginRedirect(ctx, nil)
			}

			return nil, errors.Wrap(err, "fxadmin.Session.AccessToken()")
		}
		out.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, retries, err := t.send(ctx, out)
	span.SetAttributes(attribute.Int("http.request.resend_count", retries))
	if err != nil {
		return nil, err
	}

	// A 401 that survived the retries means the token the server saw is no
	// longer good; start a re-login and surface the response unmodified.
	if resp.StatusCode == http.StatusUnauthorized && t.session.IsAuthenticated() {
		logger.FromCtx(ctx).Infof("API rejected credentials for %s, starting re-login", out.URL.Path)
		t.session.LoginRedirect(ctx, nil)
	}

	return resp, nil
}

// send performs the request, retrying transient failures with a growing
// pause. Requests whose body cannot be replayed are not retried.
func (t *Transport) send(ctx context.Context, req *http.Request) (*http.Response, int, error) {
	var resp *http.Response
	var err error

	attempt := 0
	for ; ; attempt++ {
		resp, err = t.base.RoundTrip(req)
		if !retryable(resp, err) || attempt == maxRetries {
			break
		}
		if req.Body != nil && req.GetBody == nil {
			break
		}

		if resp != nil {
			// Release the connection before retrying.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		delay := time.Duration(attempt+1) * time.Second
		logger.FromCtx(ctx).Infof("Retrying %s %s in %s (%d/%d)", req.Method, req.URL.Path, delay, attempt+1, maxRetries)
		if serr := t.sleep(ctx, delay); serr != nil {
			return nil, attempt, serr
		}

		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, attempt, errors.Wrap(berr, "http.Request.GetBody()")
			}
			req.Body = body
		}
	}

	if err != nil {
		return nil, attempt, errors.Wrap(err, "http.RoundTripper.RoundTrip()")
	}

	return resp, attempt, nil
}

// needsAuth reports whether the request targets a protected API endpoint.
func (t *Transport) needsAuth(req *http.Request) bool {
	if !strings.Contains(req.URL.Path, apiPathPrefix) {
		return false
	}
	for _, endpoint := range publicEndpoints {
		if strings.Contains(req.URL.Path, endpoint) {
			return false
		}
	}

	return true
}

// retryable reports whether the attempt failed in a way worth retrying:
// a transport-level error or a 5xx, 408 or 429 response.
func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return true
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// sessionLost reports whether a token failure means there is no usable
// session to acquire tokens from.
func sessionLost(err error) bool {
	var authErr *authstate.Error
	if !errors.As(err, &authErr) {
		return false
	}

	return authErr.Code == authstate.CodeNoAccount || authErr.Code == authstate.CodeNotBrowser
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(context.Cause(ctx), "context done")
	}
}
