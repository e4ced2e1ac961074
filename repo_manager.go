package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore is the durable Store implementation on top of bun. Atomicity
// boundaries map onto the database: the unique email index backs
// compare-and-insert registration, and single-statement updates back the
// revoke and consume flag flips.
type BunStore struct {
	db       *bun.DB
	idb      bun.IDB
	accounts repository.Repository[*Account]
	sessions repository.Repository[*Session]
	resets   repository.Repository[*ResetToken]
}

var _ Store = (*BunStore)(nil)

// NewBunStore wires repositories for the three record types over db.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{
		db:       db,
		idb:      db,
		accounts: newAccountsRepository(db),
		sessions: newSessionsRepository(db),
		resets:   newResetTokensRepository(db),
	}
}

// RunInTx reruns the store methods against a database transaction. Nested
// calls reuse the already-open transaction.
func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if s.db == nil {
		return fn(ctx, s)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, s.withIDB(tx))
	})
}

func (s *BunStore) withIDB(idb bun.IDB) *BunStore {
	return &BunStore{
		idb:      idb,
		accounts: s.accounts,
		sessions: s.sessions,
		resets:   s.resets,
	}
}

func newAccountsRepository(db *bun.DB) repository.Repository[*Account] {
	return repository.NewRepository(db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(record *Account) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.Key
		},
		SetID: func(record *Account, id uuid.UUID) {
			if record != nil {
				record.Key = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})
}

func newSessionsRepository(db *bun.DB) repository.Repository[*Session] {
	return repository.NewRepository(db, repository.ModelHandlers[*Session]{
		NewRecord: func() *Session { return &Session{} },
		GetID: func(record *Session) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.TokenID
		},
		SetID: func(record *Session, id uuid.UUID) {
			if record != nil {
				record.TokenID = id
			}
		},
	})
}

func newResetTokensRepository(db *bun.DB) repository.Repository[*ResetToken] {
	return repository.NewRepository(db, repository.ModelHandlers[*ResetToken]{
		NewRecord: func() *ResetToken { return &ResetToken{} },
		GetID: func(record *ResetToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *ResetToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})
}

// isRowNotFound covers the empty result of both repository lookups and raw
// bun selects.
func isRowNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}

// isUniqueViolation matches the driver-specific message for a violated
// unique constraint. Covers modernc/mattn sqlite and postgres wordings.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
