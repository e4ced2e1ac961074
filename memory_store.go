package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded Store for development and tests, the
// counterpart of the SQL-backed store for durable deployments. Records are
// copy-on-write: every read hands out a clone and every write replaces the
// stored record, so a RunInTx rollback is a shallow map snapshot.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	emails   map[string]uuid.UUID
	sessions map[uuid.UUID]*Session
	resets   map[uuid.UUID]*ResetToken
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*Account),
		emails:   make(map[string]uuid.UUID),
		sessions: make(map[uuid.UUID]*Session),
		resets:   make(map[uuid.UUID]*ResetToken),
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccount(account)
}

func (m *MemoryStore) GetAccount(ctx context.Context, key uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getAccount(key)
}

func (m *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getAccountByEmail(email)
}

func (m *MemoryStore) UpdatePasswordHash(ctx context.Context, key uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatePasswordHash(key, hash)
}

func (m *MemoryStore) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createSession(session)
}

func (m *MemoryStore) GetSession(ctx context.Context, tokenID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSession(tokenID)
}

func (m *MemoryStore) RevokeSession(ctx context.Context, tokenID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revokeSession(tokenID)
}

func (m *MemoryStore) CreateResetToken(ctx context.Context, token *ResetToken) (*ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createResetToken(token)
}

func (m *MemoryStore) ListResetTokens(ctx context.Context, accountKey uuid.UUID) ([]*ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listResetTokens(accountKey)
}

func (m *MemoryStore) ConsumeResetToken(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumeResetToken(id)
}

// RunInTx serializes fn against the whole store and rolls back its writes on
// error by restoring a snapshot. Records never mutate in place, so the
// shallow map copies are a sufficient snapshot.
func (m *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := copyMap(m.accounts)
	emails := copyMap(m.emails)
	sessions := copyMap(m.sessions)
	resets := copyMap(m.resets)

	if err := fn(ctx, &memoryTx{store: m}); err != nil {
		m.accounts = accounts
		m.emails = emails
		m.sessions = sessions
		m.resets = resets
		return err
	}

	return nil
}

// memoryTx is the unlocked view handed to RunInTx callbacks. The outer lock
// is already held; nested RunInTx reuses the same view.
type memoryTx struct {
	store *MemoryStore
}

var _ Store = (*memoryTx)(nil)

func (t *memoryTx) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	return t.store.createAccount(account)
}

func (t *memoryTx) GetAccount(ctx context.Context, key uuid.UUID) (*Account, error) {
	return t.store.getAccount(key)
}

func (t *memoryTx) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return t.store.getAccountByEmail(email)
}

func (t *memoryTx) UpdatePasswordHash(ctx context.Context, key uuid.UUID, hash string) error {
	return t.store.updatePasswordHash(key, hash)
}

func (t *memoryTx) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	return t.store.createSession(session)
}

func (t *memoryTx) GetSession(ctx context.Context, tokenID uuid.UUID) (*Session, error) {
	return t.store.getSession(tokenID)
}

func (t *memoryTx) RevokeSession(ctx context.Context, tokenID uuid.UUID) error {
	return t.store.revokeSession(tokenID)
}

func (t *memoryTx) CreateResetToken(ctx context.Context, token *ResetToken) (*ResetToken, error) {
	return t.store.createResetToken(token)
}

func (t *memoryTx) ListResetTokens(ctx context.Context, accountKey uuid.UUID) ([]*ResetToken, error) {
	return t.store.listResetTokens(accountKey)
}

func (t *memoryTx) ConsumeResetToken(ctx context.Context, id uuid.UUID) error {
	return t.store.consumeResetToken(id)
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

func (m *MemoryStore) createAccount(account *Account) (*Account, error) {
	// Check-and-insert happens under one lock: this is the uniqueness
	// boundary concurrent registrations race on.
	if _, taken := m.emails[account.Email]; taken {
		return nil, ErrDuplicateEmail
	}

	record := cloneAccount(account)
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}

	m.accounts[record.Key] = record
	m.emails[record.Email] = record.Key

	return cloneAccount(record), nil
}

func (m *MemoryStore) getAccount(key uuid.UUID) (*Account, error) {
	record, ok := m.accounts[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(record), nil
}

func (m *MemoryStore) getAccountByEmail(email string) (*Account, error) {
	key, ok := m.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	return m.getAccount(key)
}

func (m *MemoryStore) updatePasswordHash(key uuid.UUID, hash string) error {
	record, ok := m.accounts[key]
	if !ok {
		return ErrNotFound
	}

	updated := cloneAccount(record)
	updated.PasswordHash = hash
	now := time.Now()
	updated.UpdatedAt = &now
	m.accounts[key] = updated

	return nil
}

func (m *MemoryStore) createSession(session *Session) (*Session, error) {
	record := cloneSession(session)
	m.sessions[record.TokenID] = record
	return cloneSession(record), nil
}

func (m *MemoryStore) getSession(tokenID uuid.UUID) (*Session, error) {
	record, ok := m.sessions[tokenID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(record), nil
}

func (m *MemoryStore) revokeSession(tokenID uuid.UUID) error {
	record, ok := m.sessions[tokenID]
	if !ok || record.Revoked {
		// Idempotent: unknown or already-revoked sessions are a no-op.
		return nil
	}

	updated := cloneSession(record)
	updated.Revoked = true
	now := time.Now()
	updated.RevokedAt = &now
	m.sessions[tokenID] = updated

	return nil
}

func (m *MemoryStore) createResetToken(token *ResetToken) (*ResetToken, error) {
	record := cloneResetToken(token)
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
	m.resets[record.ID] = record
	return cloneResetToken(record), nil
}

func (m *MemoryStore) listResetTokens(accountKey uuid.UUID) ([]*ResetToken, error) {
	var records []*ResetToken
	for _, record := range m.resets {
		if record.AccountKey == accountKey {
			records = append(records, cloneResetToken(record))
		}
	}
	return records, nil
}

func (m *MemoryStore) consumeResetToken(id uuid.UUID) error {
	record, ok := m.resets[id]
	if !ok {
		return ErrNotFound
	}
	if record.Consumed {
		return ErrResetTokenConsumed
	}

	updated := cloneResetToken(record)
	updated.Consumed = true
	now := time.Now()
	updated.ConsumedAt = &now
	m.resets[id] = updated

	return nil
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneAccount(a *Account) *Account {
	clone := *a
	clone.Scopes = append([]string(nil), a.Scopes...)
	return &clone
}

func cloneSession(s *Session) *Session {
	clone := *s
	clone.Scopes = append([]string(nil), s.Scopes...)
	return &clone
}

func cloneResetToken(t *ResetToken) *ResetToken {
	clone := *t
	return &clone
}
