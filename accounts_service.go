package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Service sequences the credential store, scope authorizer, token service,
// and reset token manager behind the six operations an external request
// layer consumes. It has no opinion on wire format or transport.
type Service struct {
	store    Store
	creds    *CredentialStore
	tokens   *TokenService
	resets   *ResetTokenManager
	notifier ResetNotifier
	logger   Logger
}

// New wires a Service from an explicit store and config. No ambient
// globals: every component receives its collaborators here.
func New(store Store, cfg Config) *Service {
	logger := defLogger{}
	return &Service{
		store:    store,
		creds:    NewCredentialStore(store, cfg),
		tokens:   NewTokenService(store, cfg),
		resets:   NewResetTokenManager(store, cfg),
		notifier: logNotifier{logger: logger},
		logger:   logger,
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger == nil {
		return s
	}
	s.logger = logger
	s.creds.WithLogger(logger)
	s.tokens.WithLogger(logger)
	s.resets.WithLogger(logger)
	if _, ok := s.notifier.(logNotifier); ok {
		s.notifier = logNotifier{logger: logger}
	}
	return s
}

// WithNotifier overrides the reset notification boundary.
func (s *Service) WithNotifier(notifier ResetNotifier) *Service {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

// WithDeterministicKeys derives account keys from emails, see
// CredentialStore.WithDeterministicKeys.
func (s *Service) WithDeterministicKeys() *Service {
	s.creds.WithDeterministicKeys()
	return s
}

// Credentials exposes the underlying credential store.
func (s *Service) Credentials() *CredentialStore { return s.creds }

// Tokens exposes the underlying token service.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Resets exposes the underlying reset token manager.
func (s *Service) Resets() *ResetTokenManager { return s.resets }

// Register creates an account with pruned scopes and issues its first
// session token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Auth, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.creds.Register(ctx, req.Email, req.Password, req.Scopes)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, account)
	if err != nil {
		return nil, err
	}

	return &Auth{Account: account, Token: token}, nil
}

// Login authenticates the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Auth, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.creds.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, account)
	if err != nil {
		return nil, err
	}

	return &Auth{Account: account, Token: token}, nil
}

// Logout revokes the session behind the token. Idempotent for any token
// that carries a valid signature. An empty token is ErrInvalidToken, the
// same outcome as any other malformed token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := (TokenRequest{Token: token}).Validate(); err != nil {
		return ErrInvalidToken
	}
	return s.tokens.Revoke(ctx, token)
}

// VerifyToken resolves a token to its current account. Any bad token,
// including an empty or revoked one, is the expected negative outcome
// ErrInvalidToken.
func (s *Service) VerifyToken(ctx context.Context, token string) (*Account, error) {
	if err := (TokenRequest{Token: token}).Validate(); err != nil {
		return nil, ErrInvalidToken
	}
	return s.tokens.Verify(ctx, token)
}

// CreateResetAndNotify creates a reset token for the account behind the
// email and hands it to the notifier. Notifier failures are logged, not
// returned: the token stays valid and the caller already got its answer.
func (s *Service) CreateResetAndNotify(ctx context.Context, email string) error {
	if err := (SendResetRequest{Email: email}).Validate(); err != nil {
		return err
	}

	account, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.resets.Create(ctx, account.Key)
	if err != nil {
		return err
	}

	if err := s.notifier.NotifyReset(ctx, account.Email, account.Key.String(), token); err != nil {
		s.logger.Error("reset notification failed", "email", account.Email, "error", err)
	}

	return nil
}

// ConfirmReset consumes the reset token and replaces the password inside a
// single transaction, then authenticates with the new password to mint a
// fresh session token. There is no window where the token is consumed but
// the password unchanged.
func (s *Service) ConfirmReset(ctx context.Context, req ResetPasswordRequest) (*Auth, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation,
			"context cancelled during password reset confirmation")
	default:
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	accountKey, err := uuid.Parse(req.Key)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	// Hash outside the transaction; bcrypt must not extend the critical
	// section.
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		if err := s.resets.ConfirmTx(ctx, tx, accountKey, req.Token); err != nil {
			return err
		}
		if err := tx.UpdatePasswordHash(ctx, accountKey, hash); err != nil {
			if IsNotFound(err) {
				return ErrNotFound
			}
			return wrapStoreError(err, "failed to replace password hash")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	account, err := s.creds.store.GetAccount(ctx, accountKey)
	if err != nil {
		return nil, wrapStoreError(err, "failed to reload account after reset")
	}

	// Round-trip through login so the caller leaves with a token proven
	// against the stored hash.
	return s.Login(ctx, LoginRequest{Email: account.Email, Password: req.NewPassword})
}
