package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cccteam/fxadmin"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/go-playground/errors/v5"
	"github.com/google/go-cmp/cmp"
)

type fakeSession struct {
	authed    bool
	token     string
	tokenErr  error
	gotScopes []string
	tokenReqs int
	redirects int
}

func (f *fakeSession) IsAuthenticated() bool {
	return f.authed
}

func (f *fakeSession) AccessToken(_ context.Context, scopes ...string) (*azuread.TokenResult, error) {
	f.tokenReqs++
	f.gotScopes = scopes
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}

	return &azuread.TokenResult{AccessToken: f.token}, nil
}

func (f *fakeSession) LoginRedirect(context.Context, *fxadmin.LoginOptions) {
	f.redirects++
}

// fakeBase replays canned responses and records every attempt.
type fakeBase struct {
	statuses []int
	reqs     []*http.Request
	bodies   []string
}

func (f *fakeBase) RoundTrip(req *http.Request) (*http.Response, error) {
	f.reqs = append(f.reqs, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	}

	status := f.statuses[len(f.reqs)-1]
	if status == 0 {
		return nil, errors.New("connection refused")
	}

	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("{}")),
		Request:    req,
	}, nil
}

func newTestTransport(session *fakeSession, base *fakeBase, opts ...Option) (*Transport, *[]time.Duration) {
	t := New(session, append([]Option{WithBase(base)}, opts...)...)
	pauses := &[]time.Duration{}
	t.sleep = func(_ context.Context, d time.Duration) error {
		*pauses = append(*pauses, d)

		return nil
	}

	return t, pauses
}

func TestTransport_tokenAttachment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		header     http.Header
		authed     bool
		wantBearer bool
		wantTokens int
	}{
		{
			name:       "api request gets bearer token",
			url:        "http://localhost:7071/api/exchange-rates",
			authed:     true,
			wantBearer: true,
			wantTokens: 1,
		},
		{
			name:   "non-api request passes through",
			url:    "http://localhost:7071/static/logo.png",
			authed: true,
		},
		{
			name:   "public endpoint passes through",
			url:    "http://localhost:7071/api/health",
			authed: true,
		},
		{
			name:   "skip header passes through",
			url:    "http://localhost:7071/api/exchange-rates",
			header: http.Header{SkipAuthHeader: []string{"1"}},
			authed: true,
		},
		{
			name: "unauthenticated api request passes through",
			url:  "http://localhost:7071/api/exchange-rates",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := &fakeSession{authed: tt.authed, token: "tok-123"}
			base := &fakeBase{statuses: []int{http.StatusOK}}
			tr, _ := newTestTransport(session, base, WithScopes([]string{"api://fxadmin/.default"}))

			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != nil {
				req.Header = tt.header
			}

			resp, err := tr.RoundTrip(req)
			if err != nil {
				t.Fatalf("RoundTrip() error = %v", err)
			}
			defer resp.Body.Close()

			sent := base.reqs[0]
			gotBearer := sent.Header.Get("Authorization") == "Bearer tok-123"
			if gotBearer != tt.wantBearer {
				t.Errorf("bearer attached = %v, want %v", gotBearer, tt.wantBearer)
			}
			if sent.Header.Get(SkipAuthHeader) != "" {
				t.Error("skip header leaked to the wire")
			}
			if session.tokenReqs != tt.wantTokens {
				t.Errorf("token requests = %d, want %d", session.tokenReqs, tt.wantTokens)
			}
			if tt.wantTokens > 0 {
				if diff := cmp.Diff([]string{"api://fxadmin/.default"}, session.gotScopes); diff != "" {
					t.Errorf("scopes mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestTransport_tokenFailureStartsRelogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		tokenErr      error
		wantRedirects int
	}{
		{
			name:          "no account",
			tokenErr:      &authstate.Error{Code: authstate.CodeNoAccount},
			wantRedirects: 1,
		},
		{
			name:          "not browser",
			tokenErr:      &authstate.Error{Code: authstate.CodeNotBrowser},
			wantRedirects: 1,
		},
		{
			name:     "other token failure does not redirect",
			tokenErr: &authstate.Error{Code: authstate.CodeUnknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := &fakeSession{authed: true, tokenErr: tt.tokenErr}
			base := &fakeBase{statuses: []int{http.StatusOK}}
			tr, _ := newTestTransport(session, base)

			req, _ := http.NewRequest(http.MethodGet, "http://localhost:7071/api/exchange-rates", nil)
			if _, err := tr.RoundTrip(req); err == nil {
				t.Fatal("RoundTrip() error = nil, want token failure")
			}
			if session.redirects != tt.wantRedirects {
				t.Errorf("redirects = %d, want %d", session.redirects, tt.wantRedirects)
			}
			if len(base.reqs) != 0 {
				t.Errorf("request went out despite token failure")
			}
		})
	}
}

func TestTransport_retry(t *testing.T) {
	t.Parallel()

	t.Run("transient failures are retried with growing pauses", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{authed: true, token: "tok"}
		base := &fakeBase{statuses: []int{http.StatusServiceUnavailable, 0, http.StatusOK}}
		tr, pauses := newTestTransport(session, base)

		req, _ := http.NewRequest(http.MethodGet, "http://localhost:7071/api/exchange-rates", nil)
		resp, err := tr.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
		}
		if len(base.reqs) != 3 {
			t.Errorf("attempts = %d, want 3", len(base.reqs))
		}
		if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, *pauses); diff != "" {
			t.Errorf("pauses mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("exhausted retries surface the response unmodified", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{authed: true, token: "tok"}
		base := &fakeBase{statuses: []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusServiceUnavailable}}
		tr, _ := newTestTransport(session, base)

		req, _ := http.NewRequest(http.MethodGet, "http://localhost:7071/api/exchange-rates", nil)
		resp, err := tr.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("StatusCode = %d, want 503", resp.StatusCode)
		}
		if len(base.reqs) != 3 {
			t.Errorf("attempts = %d, want 3", len(base.reqs))
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{authed: true, token: "tok"}
		base := &fakeBase{statuses: []int{http.StatusBadRequest}}
		tr, _ := newTestTransport(session, base)

		req, _ := http.NewRequest(http.MethodGet, "http://localhost:7071/api/exchange-rates", nil)
		resp, err := tr.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		defer resp.Body.Close()

		if len(base.reqs) != 1 {
			t.Errorf("attempts = %d, want 1", len(base.reqs))
		}
	})

	t.Run("request body is replayed on every attempt", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{authed: true, token: "tok"}
		base := &fakeBase{statuses: []int{http.StatusServiceUnavailable, http.StatusOK}}
		tr, _ := newTestTransport(session, base)

		req, _ := http.NewRequest(http.MethodPost, "http://localhost:7071/api/exchange-rates", bytes.NewReader([]byte(`{"rate":17.5}`)))
		resp, err := tr.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		defer resp.Body.Close()

		if diff := cmp.Diff([]string{`{"rate":17.5}`, `{"rate":17.5}`}, base.bodies); diff != "" {
			t.Errorf("bodies mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unreplayable body is not retried", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{authed: true, token: "tok"}
		base := &fakeBase{statuses: []int{http.StatusServiceUnavailable}}
		tr, _ := newTestTransport(session, base)

		req, _ := http.NewRequest(http.MethodPost, "http://localhost:7071/api/exchange-rates", bytes.NewReader([]byte(`{}`)))
		req.GetBody = nil

		resp, err := tr.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip() error = %v", err)
		}
		defer resp.Body.Close()

		if len(base.reqs) != 1 {
			t.Errorf("attempts = %d, want 1", len(base.reqs))
		}
	})
}

func TestTransport_terminalUnauthorizedStartsRelogin(t *testing.T) {
	t.Parallel()

	session := &fakeSession{authed: true, token: "tok"}
	base := &fakeBase{statuses: []int{http.StatusUnauthorized}}
	tr, _ := newTestTransport(session, base)

	req, _ := http.NewRequest(http.MethodGet, "http://localhost:7071/api/exchange-rates", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", resp.StatusCode)
	}
	if session.redirects != 1 {
		t.Errorf("redirects = %d, want 1", session.redirects)
	}
}

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	t.Run("success returns nil", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}
		if err := CheckResponse(resp); err != nil {
			t.Errorf("CheckResponse() = %v, want nil", err)
		}
	})

	t.Run("problem details are parsed", func(t *testing.T) {
		t.Parallel()

		body := `{"title":"Bad Request","status":400,"detail":"La tasa debe ser positiva","errors":{"rate":["must be positive"]}}`
		resp := &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(strings.NewReader(body))}

		err := CheckResponse(resp)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("CheckResponse() = %v, want *Error", err)
		}
		if apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail != "La tasa debe ser positiva" {
			t.Errorf("apiErr = %+v", apiErr)
		}
		if diff := cmp.Diff(map[string][]string{"rate": {"must be positive"}}, apiErr.Errors); diff != "" {
			t.Errorf("Errors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-json body falls back to status text", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("<html>"))}

		err := CheckResponse(resp)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("CheckResponse() = %v, want *Error", err)
		}
		if apiErr.Title != "Bad Gateway" {
			t.Errorf("Title = %q, want %q", apiErr.Title, "Bad Gateway")
		}
	})
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "expired session",
			err:  &Error{StatusCode: http.StatusUnauthorized},
			want: "Su sesión ha expirado. Por favor, inicie sesión nuevamente.",
		},
		{
			name: "forbidden",
			err:  &Error{StatusCode: http.StatusForbidden},
			want: "No tiene permisos para acceder a este recurso.",
		},
		{
			name: "server failure",
			err:  &Error{StatusCode: http.StatusServiceUnavailable, Detail: "upstream down"},
			want: "Error del servidor. Intente nuevamente más tarde.",
		},
		{
			name: "validation detail wins for client errors",
			err:  &Error{StatusCode: http.StatusBadRequest, Detail: "La tasa debe ser positiva"},
			want: "La tasa debe ser positiva",
		},
		{
			name: "network failure",
			err:  errors.New("connection refused"),
			want: "Error de conexión. Verifique su conexión a internet.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
