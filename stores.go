package accounts

import (
	"context"

	"github.com/google/uuid"
)

// AccountStore owns account persistence. CreateAccount must be a
// compare-and-insert on email: concurrent registrations with the same email
// yield exactly one success and ErrDuplicateEmail for the rest.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *Account) (*Account, error)
	GetAccount(ctx context.Context, key uuid.UUID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePasswordHash(ctx context.Context, key uuid.UUID, hash string) error
}

// SessionStore owns session records. RevokeSession is an idempotent one-way
// flag flip, atomic per token id; concurrent verify and revoke never observe
// a half-updated row.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) (*Session, error)
	GetSession(ctx context.Context, tokenID uuid.UUID) (*Session, error)
	RevokeSession(ctx context.Context, tokenID uuid.UUID) error
}

// ResetTokenStore owns reset token records. ConsumeResetToken flips the
// consumed flag atomically: under concurrent confirms of the same token
// exactly one call returns nil, the rest ErrResetTokenConsumed.
type ResetTokenStore interface {
	CreateResetToken(ctx context.Context, token *ResetToken) (*ResetToken, error)
	ListResetTokens(ctx context.Context, accountKey uuid.UUID) ([]*ResetToken, error)
	ConsumeResetToken(ctx context.Context, id uuid.UUID) error
}

// Store is the explicit persistence boundary injected into each component at
// construction. RunInTx runs fn against a transactional view of the store;
// if fn errors, none of its writes survive.
type Store interface {
	AccountStore
	SessionStore
	ResetTokenStore
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
