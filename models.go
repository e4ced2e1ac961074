package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is a registered identity. The email column carries a unique
// constraint so duplicate registration is rejected by the store itself,
// not by a read-then-write check.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	Key           uuid.UUID  `bun:"key,pk,type:uuid" json:"key,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Scopes        []string   `bun:"scopes,type:jsonb" json:"scopes,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasScope reports whether the account currently carries the given scope.
func (a *Account) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Session is the revocation-tracking record behind an issued token. Rows are
// flagged revoked rather than deleted so re-revocation stays idempotent and
// verification history survives.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	TokenID       uuid.UUID  `bun:"token_id,pk,type:uuid" json:"token_id,omitempty"`
	AccountKey    uuid.UUID  `bun:"account_key,notnull,type:uuid" json:"account_key,omitempty"`
	Scopes        []string   `bun:"scopes,type:jsonb" json:"scopes,omitempty"`
	IssuedAt      time.Time  `bun:"issued_at,notnull" json:"issued_at,omitempty"`
	Revoked       bool       `bun:"revoked,notnull,default:false" json:"revoked,omitempty"`
	RevokedAt     *time.Time `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
}

// ResetToken stores only the one-way hash of an issued reset token. The
// clear token is handed to the caller once and never persisted. The pair
// (account_key, token_hash) carries a unique index.
type ResetToken struct {
	bun.BaseModel `bun:"table:reset_tokens,alias:rst"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	AccountKey    uuid.UUID  `bun:"account_key,notnull,type:uuid" json:"account_key,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Consumed      bool       `bun:"consumed,notnull,default:false" json:"consumed,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token TTL elapsed relative to now.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Auth bundles an authenticated account with its freshly issued token. It is
// what register, login, and a confirmed reset hand back to callers.
type Auth struct {
	Account *Account `json:"account,omitempty"`
	Token   string   `json:"token,omitempty"`
}
