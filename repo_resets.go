package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

func (s *BunStore) CreateResetToken(ctx context.Context, token *ResetToken) (*ResetToken, error) {
	created, err := s.resets.CreateTx(ctx, s.idb, token)
	if err != nil {
		return nil, wrapStoreError(err, "could not create reset token")
	}
	return created, nil
}

func (s *BunStore) ListResetTokens(ctx context.Context, accountKey uuid.UUID) ([]*ResetToken, error) {
	var records []*ResetToken
	err := s.idb.NewSelect().
		Model(&records).
		Where("account_key = ?", accountKey).
		Scan(ctx)
	if err != nil {
		return nil, wrapStoreError(err, "could not list reset tokens")
	}
	return records, nil
}

// ConsumeResetToken is the at-most-once boundary: the consumed = FALSE guard
// makes the flip a single-winner compare-and-set. Losers are told whether
// the token was already spent or never existed.
func (s *BunStore) ConsumeResetToken(ctx context.Context, id uuid.UUID) error {
	res, err := s.idb.NewUpdate().
		Model((*ResetToken)(nil)).
		Set("consumed = ?", true).
		Set("consumed_at = ?", time.Now()).
		Where("id = ?", id).
		Where("consumed = ?", false).
		Exec(ctx)
	if err != nil {
		return wrapStoreError(err, "could not consume reset token")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapStoreError(err, "could not read consume result")
	}
	if rows > 0 {
		return nil
	}

	var consumed bool
	err = s.idb.NewSelect().
		Model((*ResetToken)(nil)).
		Column("consumed").
		Where("id = ?", id).
		Scan(ctx, &consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return wrapStoreError(err, "could not inspect reset token")
	}

	return ErrResetTokenConsumed
}
