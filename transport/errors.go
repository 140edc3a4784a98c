package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/errors/v5"
)

// User-facing messages for API failures. The administration UI is
// Spanish-language.
const (
	msgSessionExpired  = "Su sesión ha expirado. Por favor, inicie sesión nuevamente."
	msgForbidden       = "No tiene permisos para acceder a este recurso."
	msgConnectionError = "Error de conexión. Verifique su conexión a internet."
	msgServerError     = "Error del servidor. Intente nuevamente más tarde."
)

// problemDetails is the RFC 7807 error body the API returns.
type problemDetails struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Title      string
	Detail     string
	// Errors holds field-level validation failures keyed by field name.
	Errors map[string][]string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}

	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Title)
}

// CheckResponse returns an *Error describing resp when it is not a success.
// The body is consumed.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Title:      http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "io.ReadAll()")
	}

	var details problemDetails
	if err := json.Unmarshal(body, &details); err == nil {
		if details.Title != "" {
			apiErr.Title = details.Title
		}
		apiErr.Detail = details.Detail
		apiErr.Errors = details.Errors
	}

	return apiErr
}

// UserMessage returns the message shown to the user for a failed API call.
// Connection-level failures and authorization failures get a fixed message;
// anything else falls back to the server-provided detail.
func UserMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return msgConnectionError
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return msgSessionExpired
	case apiErr.StatusCode == http.StatusForbidden:
		return msgForbidden
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return msgServerError
	case apiErr.Detail != "":
		return apiErr.Detail
	default:
		return apiErr.Title
	}
}
