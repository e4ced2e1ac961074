package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues, verifies, and revokes session tokens. The token is a
// signed envelope whose integrity is checkable without a store lookup;
// validity (non-revocation) always requires the session record.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	sessions   SessionStore
	accounts   AccountStore
	logger     Logger
}

// NewTokenService creates a TokenService bound to the given store. The
// signing key is read once here and never mutated afterwards, so concurrent
// verification needs no synchronization.
func NewTokenService(store Store, cfg Config) *TokenService {
	return &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		sessions:   store,
		accounts:   store,
		logger:     defLogger{},
	}
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// Issue signs a token over {accountKey, scopes, tokenId, issuedAt} and
// records the matching session with revoked=false. The scope list is copied
// so the token stays a snapshot even if the account changes later.
func (ts *TokenService) Issue(ctx context.Context, account *Account) (string, error) {
	now := time.Now()

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   ts.issuer,
			Subject:  account.Key.String(),
			Audience: ts.audience,
			IssuedAt: jwt.NewNumericDate(now),
		},
		AccountKey: account.Key.String(),
		Scopes:     append([]string(nil), account.Scopes...),
	}

	ensureTokenID(&claims.RegisteredClaims)

	tokenID, err := claims.TokenID()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", wrapStoreError(err, "failed to sign session token")
	}

	session := &Session{
		TokenID:    tokenID,
		AccountKey: account.Key,
		Scopes:     append([]string(nil), claims.Scopes...),
		IssuedAt:   now,
	}

	if _, err := ts.sessions.CreateSession(ctx, session); err != nil {
		return "", wrapStoreError(err, "failed to record session")
	}

	return signed, nil
}

// Decode checks the signature and returns the claims snapshot without any
// store lookup. Malformed or tampered tokens map to ErrInvalidToken; this is
// an expected outcome and never panics.
func (ts *TokenService) Decode(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verify resolves a token to the current account. Signature failures return
// ErrInvalidToken without touching the store; a missing or revoked session
// returns the same error. Callers needing the issuance-time scope snapshot
// read it from Decode instead.
func (ts *TokenService) Verify(ctx context.Context, tokenString string) (*Account, error) {
	claims, err := ts.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	tokenID, err := claims.TokenID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := ts.sessions.GetSession(ctx, tokenID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, wrapStoreError(err, "failed to load session")
	}

	if session.Revoked {
		return nil, ErrInvalidToken
	}

	account, err := ts.accounts.GetAccount(ctx, session.AccountKey)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, wrapStoreError(err, "failed to load account for session")
	}

	return account, nil
}

// Revoke flips the session behind the token to revoked. It is idempotent:
// revoking an already-revoked or unknown session still succeeds. Only a
// malformed or unsigned token fails, with ErrInvalidToken.
func (ts *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := ts.Decode(tokenString)
	if err != nil {
		return err
	}

	tokenID, err := claims.TokenID()
	if err != nil {
		return ErrInvalidToken
	}

	if err := ts.sessions.RevokeSession(ctx, tokenID); err != nil {
		return wrapStoreError(err, "failed to revoke session")
	}

	return nil
}
