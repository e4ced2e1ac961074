package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the signed envelope carried by an issued token. The scope
// list is a snapshot taken at issuance; later changes to the account never
// alter an already-issued token.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountKey string   `json:"uid,omitempty"`
	Scopes     []string `json:"scopes,omitempty"`
}

// Key returns the account key bound into the token.
func (c *SessionClaims) Key() string {
	if c.AccountKey != "" {
		return c.AccountKey
	}
	return c.RegisteredClaims.Subject
}

// TokenID returns the jti claim parsed as a UUID.
func (c *SessionClaims) TokenID() (uuid.UUID, error) {
	return uuid.Parse(c.RegisteredClaims.ID)
}

// IssuedAt returns the issuance time, zero when absent.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

// HasScope reports whether the snapshot carries the given scope.
func (c *SessionClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}
}
