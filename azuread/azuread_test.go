package azuread

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cccteam/fxadmin/azuread/loader"
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/errors/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
)

type fakeOpener struct {
	available bool
	openErr   error
	opened    []string
}

func (f *fakeOpener) Available() bool { return f.available }

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)

	return f.openErr
}

type fakeTokenSource struct {
	token *oauth2.Token
	err   error
}

func (f fakeTokenSource) Token() (*oauth2.Token, error) { return f.token, f.err }

type fakeProvider struct {
	token      *oauth2.Token
	tokenErr   error
	endSession string
}

func (f *fakeProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://login.example.com/authorize?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, _ string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return nil, errors.New("exchange not supported in this test")
}

func (f *fakeProvider) Verify(_ context.Context, _ string) (*oidc.IDToken, error) {
	return nil, errors.New("verify not supported in this test")
}

func (f *fakeProvider) TokenSource(_ context.Context, _ *oauth2.Token) oauth2.TokenSource {
	return fakeTokenSource{token: f.token, err: f.tokenErr}
}

func (f *fakeProvider) EndSessionEndpoint() string { return f.endSession }

type fakeLoader struct {
	provider loader.Provider
	err      error
}

func (f fakeLoader) Provider(_ context.Context) (loader.Provider, error) {
	return f.provider, f.err
}

func newTestOIDC(cache tokencache.Cache, p loader.Provider, opener Opener) *OIDC {
	o := New(cache, "https://login.example.com/tenant/v2.0", "client-id", "", "http://127.0.0.1:53100/auth/callback", nil, WithOpener(opener))
	o.Loader = fakeLoader{provider: p}

	return o
}

func TestOIDC_AcquireTokenSilently(t *testing.T) {
	t.Parallel()

	account := tokencache.Account{HomeID: "home", Username: "user@example.com"}
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name                string
		record              *tokencache.Record
		provider            *fakeProvider
		wantToken           string
		wantInteractionReq  bool
		wantErr             bool
		wantCachedRefreshed bool
	}{
		{
			name:               "no cached record requires interaction",
			wantInteractionReq: true,
			wantErr:            true,
		},
		{
			name: "fresh cached token is returned without a refresh",
			record: &tokencache.Record{
				Account:     account,
				AccessToken: "cached-token",
				Expiry:      now.Add(time.Hour),
			},
			wantToken: "cached-token",
		},
		{
			name: "expired token without refresh token requires interaction",
			record: &tokencache.Record{
				Account:     account,
				AccessToken: "cached-token",
				Expiry:      now.Add(-time.Hour),
			},
			wantInteractionReq: true,
			wantErr:            true,
		},
		{
			name: "expired token is renewed via the refresh grant",
			record: &tokencache.Record{
				Account:      account,
				AccessToken:  "stale-token",
				RefreshToken: "refresh-token",
				Expiry:       now.Add(-time.Hour),
			},
			provider: &fakeProvider{
				token: &oauth2.Token{AccessToken: "fresh-token", RefreshToken: "rotated-refresh", Expiry: now.Add(time.Hour)},
			},
			wantToken:           "fresh-token",
			wantCachedRefreshed: true,
		},
		{
			name: "revoked refresh token requires interaction",
			record: &tokencache.Record{
				Account:      account,
				AccessToken:  "stale-token",
				RefreshToken: "refresh-token",
				Expiry:       now.Add(-time.Hour),
			},
			provider: &fakeProvider{
				tokenErr: &oauth2.RetrieveError{ErrorCode: "invalid_grant", ErrorDescription: "AADSTS70008: refresh token expired"},
			},
			wantInteractionReq: true,
			wantErr:            true,
		},
		{
			name: "other provider failures pass through",
			record: &tokencache.Record{
				Account:      account,
				AccessToken:  "stale-token",
				RefreshToken: "refresh-token",
				Expiry:       now.Add(-time.Hour),
			},
			provider: &fakeProvider{
				tokenErr: &oauth2.RetrieveError{ErrorCode: "temporarily_unavailable", ErrorDescription: "try again"},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache := tokencache.NewMemoryCache()
			if tt.record != nil {
				if err := cache.Put(tt.record); err != nil {
					t.Fatalf("cache.Put() error = %v", err)
				}
			}

			p := tt.provider
			if p == nil {
				p = &fakeProvider{}
			}
			o := newTestOIDC(cache, p, &fakeOpener{available: true})
			o.now = func() time.Time { return now }

			got, err := o.AcquireTokenSilently(context.Background(), nil, account)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OIDC.AcquireTokenSilently() error = %v, wantErr %v", err, tt.wantErr)
			}
			if IsInteractionRequired(err) != tt.wantInteractionReq {
				t.Errorf("IsInteractionRequired(err) = %v, want %v (err = %v)", IsInteractionRequired(err), tt.wantInteractionReq, err)
			}
			if tt.wantErr {
				return
			}

			if got.AccessToken != tt.wantToken {
				t.Errorf("TokenResult.AccessToken = %q, want %q", got.AccessToken, tt.wantToken)
			}

			if tt.wantCachedRefreshed {
				rec, ok := cache.Get(account.HomeID)
				if !ok {
					t.Fatal("cache.Get() record missing after refresh")
				}
				if rec.AccessToken != tt.wantToken {
					t.Errorf("cached AccessToken = %q, want %q", rec.AccessToken, tt.wantToken)
				}
				if rec.RefreshToken != "rotated-refresh" {
					t.Errorf("cached RefreshToken = %q, want %q", rec.RefreshToken, "rotated-refresh")
				}
			}
		})
	}
}

func TestOIDC_AcquireTokenSilently_NotBrowser(t *testing.T) {
	t.Parallel()

	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, &fakeOpener{available: false})

	_, err := o.AcquireTokenSilently(context.Background(), nil, tokencache.Account{HomeID: "home"})
	if !IsNotBrowser(err) {
		t.Errorf("IsNotBrowser(err) = false, want true (err = %v)", err)
	}
}

func TestOIDC_LoginInteractive_NotBrowser(t *testing.T) {
	t.Parallel()

	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, &fakeOpener{available: false})

	_, err := o.LoginInteractive(context.Background(), LoginRequest{Mode: ModePopup})
	if !IsNotBrowser(err) {
		t.Errorf("IsNotBrowser(err) = false, want true (err = %v)", err)
	}
}

func TestOIDC_LoginInteractive_OpenFailureEndsInteraction(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{available: true, openErr: errors.New("no browser")}
	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, opener)

	var doneCalls int
	cancel := o.OnInteractionDone(func() { doneCalls++ })
	defer cancel()

	if _, err := o.LoginInteractive(context.Background(), LoginRequest{Mode: ModePopup}); err == nil {
		t.Fatal("OIDC.LoginInteractive() error = nil, want error")
	}

	if doneCalls != 1 {
		t.Errorf("interaction-done calls = %d, want 1", doneCalls)
	}

	// A failed login must release the interaction lock for the next attempt.
	if _, err := o.LoginInteractive(context.Background(), LoginRequest{Mode: ModePopup}); err == nil {
		t.Fatal("OIDC.LoginInteractive() second call error = nil, want error")
	} else if ie := new(Error); errors.As(err, &ie) && ie.Code == "interaction_in_progress" {
		t.Errorf("OIDC.LoginInteractive() second call error = %v, want open failure", err)
	}
}

func TestOIDC_LogoutInteractive(t *testing.T) {
	t.Parallel()

	account := tokencache.Account{HomeID: "home", Username: "user@example.com"}
	cache := tokencache.NewMemoryCache()
	if err := cache.Put(&tokencache.Record{Account: account, AccessToken: "tok"}); err != nil {
		t.Fatalf("cache.Put() error = %v", err)
	}

	opener := &fakeOpener{available: true}
	o := newTestOIDC(cache, &fakeProvider{endSession: "https://login.example.com/logout"}, opener)

	if err := o.LogoutInteractive(context.Background(), account, LogoutRequest{PostLogoutRedirectURI: "http://127.0.0.1:53100/login"}); err != nil {
		t.Fatalf("OIDC.LogoutInteractive() error = %v", err)
	}

	if got := len(cache.Accounts()); got != 0 {
		t.Errorf("cached accounts after logout = %d, want 0", got)
	}

	if len(opener.opened) != 1 {
		t.Fatalf("opened URLs = %d, want 1", len(opener.opened))
	}
	u, err := url.Parse(opener.opened[0])
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	if got := u.Query().Get("post_logout_redirect_uri"); got != "http://127.0.0.1:53100/login" {
		t.Errorf("post_logout_redirect_uri = %q, want %q", got, "http://127.0.0.1:53100/login")
	}
	if got := u.Query().Get("logout_hint"); got != "user@example.com" {
		t.Errorf("logout_hint = %q, want %q", got, "user@example.com")
	}
}

func TestOIDC_CompleteRedirectFlow_ConsumesPendingOnce(t *testing.T) {
	t.Parallel()

	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, &fakeOpener{available: true})

	result, err := o.CompleteRedirectFlow(context.Background())
	if err != nil || result != nil {
		t.Fatalf("OIDC.CompleteRedirectFlow() = (%v, %v), want (nil, nil)", result, err)
	}

	o.mu.Lock()
	o.pending = &LoginResult{Account: tokencache.Account{HomeID: "home"}}
	o.mu.Unlock()

	result, err = o.CompleteRedirectFlow(context.Background())
	if err != nil {
		t.Fatalf("OIDC.CompleteRedirectFlow() error = %v", err)
	}
	if result == nil || result.Account.HomeID != "home" {
		t.Fatalf("OIDC.CompleteRedirectFlow() result = %v, want pending login", result)
	}

	result, err = o.CompleteRedirectFlow(context.Background())
	if err != nil || result != nil {
		t.Errorf("OIDC.CompleteRedirectFlow() second call = (%v, %v), want (nil, nil)", result, err)
	}
}

func TestOIDC_CallbackStateMismatch(t *testing.T) {
	t.Parallel()

	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, &fakeOpener{available: true})
	f := &flow{state: "expected-state", verifier: "verifier", resultC: make(chan flowOutcome, 1)}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=wrong&code=abc", http.NoBody)
	rr := httptest.NewRecorder()

	o.callbackHandler(&fakeProvider{}, f)(rr, req)

	out := <-f.resultC
	if out.err == nil {
		t.Fatal("flow outcome error = nil, want state validation failure")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("response.Code = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestOIDC_CallbackProviderError(t *testing.T) {
	t.Parallel()

	o := newTestOIDC(tokencache.NewMemoryCache(), &fakeProvider{}, &fakeOpener{available: true})
	f := &flow{state: "state", verifier: "verifier", resultC: make(chan flowOutcome, 1)}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied&error_description=user+declined", http.NoBody)
	rr := httptest.NewRecorder()

	o.callbackHandler(&fakeProvider{}, f)(rr, req)

	out := <-f.resultC
	aerr := new(Error)
	if !errors.As(out.err, &aerr) {
		t.Fatalf("flow outcome error = %v, want *azuread.Error", out.err)
	}
	if aerr.Code != "access_denied" {
		t.Errorf("Error.Code = %q, want %q", aerr.Code, "access_denied")
	}
}

func TestIDClaims_Account(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		claims  idClaims
		subject string
		want    tokencache.Account
	}{
		{
			name:    "object id preferred over subject",
			claims:  idClaims{Username: "user@example.com", Name: "User", Roles: []string{"Admin"}, ObjectID: "oid-1"},
			subject: "sub-1",
			want:    tokencache.Account{HomeID: "oid-1", Username: "user@example.com", Name: "User", Roles: []string{"Admin"}},
		},
		{
			name:    "subject fallback and username as display name",
			claims:  idClaims{Username: "user@example.com"},
			subject: "sub-1",
			want:    tokencache.Account{HomeID: "sub-1", Username: "user@example.com", Name: "user@example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, tt.claims.account(tt.subject)); diff != "" {
				t.Errorf("idClaims.account() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRolesFromIDToken(t *testing.T) {
	t.Parallel()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"preferred_username": "user@example.com",
		"roles":              []string{"Viewer", "Admin"},
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("jwt.Token.SignedString() error = %v", err)
	}

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty token", raw: "", want: nil},
		{name: "malformed token", raw: "not-a-jwt", want: nil},
		{name: "roles recovered", raw: signed, want: []string{"Viewer", "Admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, rolesFromIDToken(tt.raw)); diff != "" {
				t.Errorf("rolesFromIDToken() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
