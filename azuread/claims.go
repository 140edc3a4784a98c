package azuread

import (
	"github.com/cccteam/fxadmin/tokencache"
	"github.com/golang-jwt/jwt/v5"
)

// idClaims are the ID Token claims the application consumes.
type idClaims struct {
	Username string   `json:"preferred_username"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	ObjectID string   `json:"oid"`
}

// account maps verified ID Token claims to a cached account. The provider's
// object ID is the stable account identifier, with the token subject as a
// fallback.
func (c idClaims) account(subject string) tokencache.Account {
	homeID := c.ObjectID
	if homeID == "" {
		homeID = subject
	}

	name := c.Name
	if name == "" {
		name = c.Username
	}

	return tokencache.Account{
		HomeID:   homeID,
		Username: c.Username,
		Name:     name,
		Roles:    c.Roles,
	}
}

// rolesFromIDToken recovers role claims from a cached raw ID token. The
// token was verified when it was first received, so an unverified parse is
// sufficient here.
func rolesFromIDToken(raw string) []string {
	if raw == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}

	rawRoles, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}

	return roles
}
