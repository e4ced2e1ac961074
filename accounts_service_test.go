package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*accounts.Service, *capturingNotifier) {
	notifier := &capturingNotifier{}
	service := accounts.New(accounts.NewMemoryStore(), testConfig()).
		WithLogger(quietLogger{}).
		WithNotifier(notifier)
	return service, notifier
}

func TestServiceRegisterLoginLogoutVerify(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	auth, err := service.Register(ctx, accounts.RegisterRequest{
		Email:    "u@example.com",
		Password: "pw",
		Scopes:   []string{"buyer", "admin"},
	})
	require.NoError(t, err)
	require.NotNil(t, auth.Account)
	require.NotEmpty(t, auth.Token)
	assert.ElementsMatch(t, []string{"default", "buyer"}, auth.Account.Scopes)

	t.Run("registration token verifies", func(t *testing.T) {
		account, err := service.VerifyToken(ctx, auth.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.Account.Key, account.Key)
	})

	login, err := service.Login(ctx, accounts.LoginRequest{Email: "u@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	t.Run("login token resolves the authenticated account", func(t *testing.T) {
		account, err := service.VerifyToken(ctx, login.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.Account.Key, account.Key)
	})

	require.NoError(t, service.Logout(ctx, login.Token))

	t.Run("verify after logout is invalid", func(t *testing.T) {
		_, err := service.VerifyToken(ctx, login.Token)
		assert.True(t, accounts.IsInvalidToken(err))
	})

	t.Run("logout again still succeeds", func(t *testing.T) {
		assert.NoError(t, service.Logout(ctx, login.Token))
	})

	t.Run("registration token unaffected by the other logout", func(t *testing.T) {
		_, err := service.VerifyToken(ctx, auth.Token)
		assert.NoError(t, err)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := service.Register(ctx, accounts.RegisterRequest{Email: "u@example.com", Password: "pw2"})
		assert.True(t, accounts.IsDuplicateEmail(err))
	})

	t.Run("invalid payload reports the field", func(t *testing.T) {
		_, err := service.Register(ctx, accounts.RegisterRequest{Password: "pw"})
		errs := fieldErrors(t, err)
		assert.Contains(t, errs, "email")
	})
}

func TestServiceResetFlow(t *testing.T) {
	ctx := context.Background()
	service, notifier := newTestService()

	auth, err := service.Register(ctx, accounts.RegisterRequest{Email: "r@example.com", Password: "old-pw"})
	require.NoError(t, err)

	require.NoError(t, service.CreateResetAndNotify(ctx, "r@example.com"))

	captured, ok := notifier.last()
	require.True(t, ok, "notifier should receive the clear token")
	assert.Equal(t, "r@example.com", captured.Email)
	assert.Equal(t, auth.Account.Key.String(), captured.AccountKey)
	require.NotEmpty(t, captured.Token)

	fresh, err := service.ConfirmReset(ctx, accounts.ResetPasswordRequest{
		Key:         captured.AccountKey,
		Token:       captured.Token,
		NewPassword: "new-pw",
	})
	require.NoError(t, err)
	require.NotEmpty(t, fresh.Token)

	t.Run("fresh token verifies", func(t *testing.T) {
		account, err := service.VerifyToken(ctx, fresh.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.Account.Key, account.Key)
	})

	t.Run("new password wins, old password fails", func(t *testing.T) {
		_, err := service.Login(ctx, accounts.LoginRequest{Email: "r@example.com", Password: "new-pw"})
		assert.NoError(t, err)

		_, err = service.Login(ctx, accounts.LoginRequest{Email: "r@example.com", Password: "old-pw"})
		assert.True(t, accounts.IsInvalidCredentials(err))
	})

	t.Run("pre-reset session stays valid until revoked", func(t *testing.T) {
		_, err := service.VerifyToken(ctx, auth.Token)
		assert.NoError(t, err)
	})

	t.Run("token is single use", func(t *testing.T) {
		_, err := service.ConfirmReset(ctx, accounts.ResetPasswordRequest{
			Key:         captured.AccountKey,
			Token:       captured.Token,
			NewPassword: "another-pw",
		})
		assert.True(t, accounts.IsResetTokenConsumed(err))

		// the failed confirm must not have changed the password
		_, err = service.Login(ctx, accounts.LoginRequest{Email: "r@example.com", Password: "new-pw"})
		assert.NoError(t, err)
	})
}

func TestServiceResetFlowEdgeCases(t *testing.T) {
	ctx := context.Background()
	service, notifier := newTestService()

	auth, err := service.Register(ctx, accounts.RegisterRequest{Email: "edge@example.com", Password: "pw"})
	require.NoError(t, err)

	t.Run("reset for unknown email", func(t *testing.T) {
		err := service.CreateResetAndNotify(ctx, "ghost@example.com")
		assert.True(t, accounts.IsNotFound(err))
	})

	t.Run("confirm with a token that was never issued", func(t *testing.T) {
		_, err := service.ConfirmReset(ctx, accounts.ResetPasswordRequest{
			Key:         auth.Account.Key.String(),
			Token:       "made-up",
			NewPassword: "pw2",
		})
		assert.True(t, accounts.IsInvalidResetToken(err))
	})

	t.Run("notifier failure does not fail the request", func(t *testing.T) {
		notifier.err = assert.AnError
		defer func() { notifier.err = nil }()

		assert.NoError(t, service.CreateResetAndNotify(ctx, "edge@example.com"))
	})

	t.Run("failed confirm leaves the old password usable", func(t *testing.T) {
		_, err := service.Login(ctx, accounts.LoginRequest{Email: "edge@example.com", Password: "pw"})
		assert.NoError(t, err)
	})
}

func TestServiceLogsNotifierFailure(t *testing.T) {
	ctx := context.Background()

	logger := &MockLogger{}
	logger.On("Error", "reset notification failed", mock.Anything).Return()

	notifier := &capturingNotifier{err: assert.AnError}
	service := accounts.New(accounts.NewMemoryStore(), testConfig()).
		WithLogger(logger).
		WithNotifier(notifier)

	_, err := service.Register(ctx, accounts.RegisterRequest{Email: "log@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, service.CreateResetAndNotify(ctx, "log@example.com"))
	logger.AssertCalled(t, "Error", "reset notification failed", mock.Anything)
}

func TestServiceEmptyTokenIsInvalid(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.VerifyToken(ctx, "")
	assert.True(t, accounts.IsInvalidToken(err))

	err = service.Logout(ctx, "")
	assert.True(t, accounts.IsInvalidToken(err))
}
