package azuread

import (
	"fmt"

	"github.com/go-playground/errors/v5"
	"golang.org/x/oauth2"
)

// Provider error codes surfaced by the bridge. These match the vocabulary
// the rest of the application translates from.
const (
	// ErrCodeNotBrowser marks operations attempted without an interactive
	// browser environment.
	ErrCodeNotBrowser = "NOT_BROWSER"
	// ErrCodeInteractionRequired marks silent token failures that need an
	// interactive login to resolve.
	ErrCodeInteractionRequired = "interaction_required"
)

// Error is a normalized identity-provider failure.
type Error struct {
	Code        string
	Description string
	SubError    string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// notBrowserError reports that the operation needs an interactive browser.
func notBrowserError() *Error {
	return &Error{Code: ErrCodeNotBrowser, Description: "no interactive browser environment is available"}
}

// interactionRequiredError reports that silent token renewal is impossible.
func interactionRequiredError(description string) *Error {
	return &Error{Code: ErrCodeInteractionRequired, Description: description}
}

// IsInteractionRequired reports whether err (or its cause) requires an
// interactive login to resolve.
func IsInteractionRequired(err error) bool {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Code == ErrCodeInteractionRequired
	}

	return false
}

// IsNotBrowser reports whether err (or its cause) is an environment failure.
func IsNotBrowser(err error) bool {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Code == ErrCodeNotBrowser
	}

	return false
}

// normalizeTokenError maps oauth2 endpoint failures into bridge errors. An
// invalid or revoked refresh token requires interaction; everything else is
// passed through as a provider error.
func normalizeTokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		switch rerr.ErrorCode {
		case "invalid_grant", "interaction_required", "login_required", "consent_required":
			return interactionRequiredError(rerr.ErrorDescription)
		default:
			return &Error{Code: rerr.ErrorCode, Description: rerr.ErrorDescription}
		}
	}

	return errors.Wrap(err, "oauth2.TokenSource.Token()")
}
