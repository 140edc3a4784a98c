package fxadmin

// Option is a function that can set an option on a Session.
type Option func(*Session)

// WithDefaultScopes sets the scopes requested when a login or token call
// does not name its own.
func WithDefaultScopes(scopes []string) Option {
	return func(s *Session) {
		s.scopes = scopes
	}
}

// WithPostLogoutRedirectURI sets where the provider sends the browser after
// an interactive logout.
func WithPostLogoutRedirectURI(uri string) Option {
	return func(s *Session) {
		s.postLogoutRedirectURI = uri
	}
}
