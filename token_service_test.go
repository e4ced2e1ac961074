package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store *accounts.MemoryStore, email string, scopes []string) *accounts.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), &accounts.Account{
		Key:          uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Scopes:       scopes,
	})
	require.NoError(t, err)
	return account
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	store := accounts.NewMemoryStore()
	service := accounts.NewTokenService(store, testConfig()).WithLogger(quietLogger{})

	account := seedAccount(t, store, "issue@example.com", []string{"default", "buyer"})

	token, err := service.Issue(ctx, account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("verifies immediately and resolves the account", func(t *testing.T) {
		got, err := service.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, account.Key, got.Key)
		assert.Equal(t, account.Email, got.Email)
	})

	t.Run("claims carry the scope snapshot", func(t *testing.T) {
		claims, err := service.Decode(token)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"default", "buyer"}, claims.Scopes)
		assert.Equal(t, account.Key.String(), claims.Key())
		assert.WithinDuration(t, time.Now(), claims.IssuedAt(), time.Minute)
		assert.True(t, claims.HasScope("buyer"))
		assert.False(t, claims.HasScope("admin"))
	})

	t.Run("snapshot survives later scope changes", func(t *testing.T) {
		claims, err := service.Decode(token)
		require.NoError(t, err)

		// the account record changing does not alter the issued token
		assert.NotContains(t, claims.Scopes, "seller")
	})
}

func TestTokenServiceVerifyFailClosed(t *testing.T) {
	ctx := context.Background()
	store := accounts.NewMemoryStore()
	service := accounts.NewTokenService(store, testConfig()).WithLogger(quietLogger{})

	account := seedAccount(t, store, "failclosed@example.com", []string{"default"})
	token, err := service.Issue(ctx, account)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Verify(ctx, "not.a.token")
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := service.Verify(ctx, "")
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("tampered payload", func(t *testing.T) {
		_, err := service.Verify(ctx, token+"x")
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		otherCfg := testConfig()
		otherCfg.SigningKey = "some-other-key"
		other := accounts.NewTokenService(accounts.NewMemoryStore(), otherCfg).WithLogger(quietLogger{})

		foreign, err := other.Issue(ctx, account)
		require.NoError(t, err)

		_, err = service.Verify(ctx, foreign)
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("valid signature but no session record", func(t *testing.T) {
		orphanCfg := testConfig()
		orphan := accounts.NewTokenService(accounts.NewMemoryStore(), orphanCfg).WithLogger(quietLogger{})

		foreign, err := orphan.Issue(ctx, account)
		require.NoError(t, err)

		// same signing key, but this store never saw the session
		_, err = service.Verify(ctx, foreign)
		assert.True(t, accounts.IsInvalidToken(err))
	})
}

func TestTokenServiceRevoke(t *testing.T) {
	ctx := context.Background()
	store := accounts.NewMemoryStore()
	service := accounts.NewTokenService(store, testConfig()).WithLogger(quietLogger{})

	account := seedAccount(t, store, "revoke@example.com", []string{"default"})
	token, err := service.Issue(ctx, account)
	require.NoError(t, err)

	_, err = service.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, token))

	t.Run("verify after revoke is invalid", func(t *testing.T) {
		_, err := service.Verify(ctx, token)
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		assert.NoError(t, service.Revoke(ctx, token))
		assert.NoError(t, service.Revoke(ctx, token))
	})

	t.Run("revoking a malformed token fails", func(t *testing.T) {
		err := service.Revoke(ctx, "garbage")
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("revocation does not touch other sessions", func(t *testing.T) {
		a, err := service.Issue(ctx, account)
		require.NoError(t, err)
		b, err := service.Issue(ctx, account)
		require.NoError(t, err)

		require.NoError(t, service.Revoke(ctx, a))

		_, err = service.Verify(ctx, a)
		assert.True(t, accounts.IsInvalidToken(err))

		_, err = service.Verify(ctx, b)
		assert.NoError(t, err)
	})
}
