package fxadmin

import (
	"time"

	"github.com/cccteam/fxadmin/authstate"
	"github.com/cccteam/fxadmin/azuread"
	"github.com/go-playground/errors/v5"
)

// User-facing messages. The administration UI is Spanish-language.
const (
	msgBrowserOnly  = "La autenticación solo está disponible en el navegador"
	msgTokenBrowser = "Token solo disponible en navegador"
	msgNoAccount    = "No hay usuario autenticado"
	msgUnknown      = "Error desconocido"
)

func notBrowserError(message string) *authstate.Error {
	return &authstate.Error{
		Code:      authstate.CodeNotBrowser,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func noAccountError() *authstate.Error {
	return &authstate.Error{
		Code:      authstate.CodeNoAccount,
		Message:   msgNoAccount,
		Timestamp: time.Now(),
	}
}

// newAuthError translates a bridge failure into the session error type. The
// Session is the only writer of authstate.Error values.
func newAuthError(err error) *authstate.Error {
	var sessErr *authstate.Error
	if errors.As(err, &sessErr) {
		return sessErr
	}

	var bridgeErr *azuread.Error
	if errors.As(err, &bridgeErr) {
		message := bridgeErr.Description
		if message == "" {
			message = msgUnknown
		}

		return &authstate.Error{
			Code:      authstate.Code(bridgeErr.Code),
			Message:   message,
			Details:   bridgeErr.SubError,
			Timestamp: time.Now(),
		}
	}

	return &authstate.Error{
		Code:      authstate.CodeUnknown,
		Message:   err.Error(),
		Timestamp: time.Now(),
	}
}
