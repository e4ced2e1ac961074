package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const resetTokenBytes = 32

// DefaultResetTokenTTL applies when the config carries no TTL pattern.
const DefaultResetTokenTTL = time.Hour

// ResetTokenManager issues and confirms short-lived single-use password
// reset tokens. Only the SHA-256 hash of a token is ever stored; the clear
// token goes to the caller once, for out-of-band delivery.
type ResetTokenManager struct {
	store  ResetTokenStore
	ttl    time.Duration
	logger Logger
}

// NewResetTokenManager creates a manager with the TTL fixed from config.
// An unparseable or empty TTL pattern falls back to DefaultResetTokenTTL.
func NewResetTokenManager(store Store, cfg Config) *ResetTokenManager {
	ttl := DefaultResetTokenTTL
	if pattern := cfg.GetResetTokenTTL(); pattern != "" {
		if parsed, err := time.ParseDuration(pattern); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	return &ResetTokenManager{
		store:  store,
		ttl:    ttl,
		logger: defLogger{},
	}
}

func (m *ResetTokenManager) WithLogger(logger Logger) *ResetTokenManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// TTL returns the expiry window applied to newly created tokens.
func (m *ResetTokenManager) TTL() time.Duration {
	return m.ttl
}

// Create issues a new reset token for the account and returns the clear
// token. Multiple outstanding tokens per account are permitted; each is
// independent. The store never reveals the clear token again.
func (m *ResetTokenManager) Create(ctx context.Context, accountKey uuid.UUID) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	record := &ResetToken{
		ID:         uuid.New(),
		AccountKey: accountKey,
		TokenHash:  HashResetToken(token),
		ExpiresAt:  time.Now().Add(m.ttl),
	}

	if _, err := m.store.CreateResetToken(ctx, record); err != nil {
		return "", wrapStoreError(err, "failed to store reset token")
	}

	return token, nil
}

// Confirm consumes the token exactly once. See ConfirmTx for semantics.
func (m *ResetTokenManager) Confirm(ctx context.Context, accountKey uuid.UUID, token string) error {
	return m.ConfirmTx(ctx, m.store, accountKey, token)
}

// ConfirmTx matches the supplied token against the account's stored hashes
// and consumes it. Checks run in a fixed order: no match yields
// ErrInvalidResetToken, past the TTL ErrResetTokenExpired, and an
// already-used token ErrResetTokenConsumed. The consume is
// a single atomic flag flip: under concurrent confirms of the same token
// exactly one caller gets nil. Passing a transactional store view lets the
// caller couple the consume with the password update.
func (m *ResetTokenManager) ConfirmTx(ctx context.Context, store ResetTokenStore, accountKey uuid.UUID, token string) error {
	records, err := store.ListResetTokens(ctx, accountKey)
	if err != nil {
		return wrapStoreError(err, "failed to load reset tokens")
	}

	// Compare the hash against every record in constant time, no early exit
	// on a character mismatch.
	supplied := []byte(HashResetToken(token))
	var match *ResetToken
	for _, record := range records {
		if subtle.ConstantTimeCompare(supplied, []byte(record.TokenHash)) == 1 && match == nil {
			match = record
		}
	}

	if match == nil {
		return ErrInvalidResetToken
	}

	if match.Expired(time.Now()) {
		return ErrResetTokenExpired
	}

	if match.Consumed {
		return ErrResetTokenConsumed
	}

	if err := store.ConsumeResetToken(ctx, match.ID); err != nil {
		if IsResetTokenConsumed(err) {
			return ErrResetTokenConsumed
		}
		return wrapStoreError(err, "failed to consume reset token")
	}

	return nil
}

// HashResetToken returns the hex SHA-256 fingerprint stored in place of the
// clear token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
