package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// CredentialStore owns account records: it enforces email uniqueness through
// the store's compare-and-insert and never lets a clear password reach
// persistence or logs.
type CredentialStore struct {
	store             AccountStore
	defaultScopes     []string
	allowedScopes     []string
	deterministicKeys bool
	logger            Logger
}

// NewCredentialStore creates a credential store with the scope configuration
// captured at construction time.
func NewCredentialStore(store Store, cfg Config) *CredentialStore {
	return &CredentialStore{
		store:         store,
		defaultScopes: append([]string(nil), cfg.GetDefaultScopes()...),
		allowedScopes: append([]string(nil), cfg.GetAllowedScopes()...),
		logger:        defLogger{},
	}
}

func (c *CredentialStore) WithLogger(logger Logger) *CredentialStore {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithDeterministicKeys derives account keys from the email via hashid
// instead of random UUIDs. Useful when accounts must be addressable before
// the registration round-trip completes.
func (c *CredentialStore) WithDeterministicKeys() *CredentialStore {
	c.deterministicKeys = true
	return c
}

// Register prunes the requested scopes, hashes the password, and inserts the
// account. Insert and uniqueness check are one atomic operation in the
// store: concurrent registrations with the same email produce exactly one
// account and ErrDuplicateEmail for every other caller.
func (c *CredentialStore) Register(ctx context.Context, email, password string, requestedScopes []string) (*Account, error) {
	if email == "" {
		return nil, goerrors.New("email must not be empty", goerrors.CategoryValidation).
			WithTextCode("EMPTY_EMAIL")
	}

	// Hash before touching the store; bcrypt is deliberately expensive.
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Key:          uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Scopes:       PruneScopes(requestedScopes, c.defaultScopes, c.allowedScopes),
	}

	if c.deterministicKeys {
		if key, err := hashid.NewUUID(email); err == nil {
			account.Key = key
		}
	}

	created, err := c.store.CreateAccount(ctx, account)
	if err != nil {
		if IsDuplicateEmail(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, wrapStoreError(err, "failed to create account")
	}

	return created, nil
}

// Login verifies the password for the email. An unknown email and a hash
// mismatch return the identical ErrInvalidCredentials value so the response
// never reveals which factor was wrong.
func (c *CredentialStore) Login(ctx context.Context, email, password string) (*Account, error) {
	account, err := c.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrapStoreError(err, "failed to retrieve account during login")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// FindByEmail looks an account up by its unique email.
func (c *CredentialStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	account, err := c.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreError(err, "failed to retrieve account by email")
	}
	return account, nil
}

// UpdatePassword replaces the password hash only. Scopes are untouched and
// existing sessions stay valid until independently revoked; a reset does not
// force a global logout.
func (c *CredentialStore) UpdatePassword(ctx context.Context, key uuid.UUID, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := c.store.UpdatePasswordHash(ctx, key, hash); err != nil {
		if IsNotFound(err) {
			return ErrNotFound
		}
		return wrapStoreError(err, "failed to update password hash")
	}

	return nil
}
