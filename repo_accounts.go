package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func (s *BunStore) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	created, err := s.accounts.CreateTx(ctx, s.idb, account)
	if err != nil {
		// The unique index on email turns the duplicate race into a
		// constraint violation; exactly one insert wins.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, wrapStoreError(err, "could not create account")
	}
	return created, nil
}

func (s *BunStore) GetAccount(ctx context.Context, key uuid.UUID) (*Account, error) {
	// The PK column is key, not id, so this bypasses the repository's
	// id-based lookup.
	record := &Account{}
	err := s.idb.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isRowNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreError(err, "could not load account")
	}
	return record, nil
}

func (s *BunStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	record, err := s.accounts.GetByIdentifierTx(ctx, s.idb, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreError(err, "could not load account by email")
	}
	return record, nil
}

func (s *BunStore) UpdatePasswordHash(ctx context.Context, key uuid.UUID, hash string) error {
	res, err := s.idb.NewUpdate().
		Model((*Account)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return wrapStoreError(err, "could not update password hash")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapStoreError(err, "could not read password update result")
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
