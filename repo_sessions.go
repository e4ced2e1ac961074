package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func (s *BunStore) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	created, err := s.sessions.CreateTx(ctx, s.idb, session)
	if err != nil {
		return nil, wrapStoreError(err, "could not create session")
	}
	return created, nil
}

func (s *BunStore) GetSession(ctx context.Context, tokenID uuid.UUID) (*Session, error) {
	// The PK column is token_id, not id, so this bypasses the repository's
	// id-based lookup.
	record := &Session{}
	err := s.idb.NewSelect().
		Model(record).
		Where("?TableAlias.token_id = ?", tokenID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isRowNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreError(err, "could not load session")
	}
	return record, nil
}

// RevokeSession flips revoked in one statement. The revoked = FALSE guard
// keeps the flip monotonic; zero affected rows means the session was
// unknown or already revoked, which is still success.
func (s *BunStore) RevokeSession(ctx context.Context, tokenID uuid.UUID) error {
	_, err := s.idb.NewUpdate().
		Model((*Session)(nil)).
		Set("revoked = ?", true).
		Set("revoked_at = ?", time.Now()).
		Where("token_id = ?", tokenID).
		Where("revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return wrapStoreError(err, "could not revoke session")
	}
	return nil
}
