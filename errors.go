package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the rich errors below so callers can branch on a
// stable identifier instead of matching on message strings.
const (
	TextCodeDuplicateEmail     = "EMAIL_TAKEN"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	TextCodeResetTokenExpired  = "RESET_TOKEN_EXPIRED"
	TextCodeResetTokenConsumed = "RESET_TOKEN_CONSUMED"
	TextCodeNotFound           = "NOT_FOUND"
)

// ErrDuplicateEmail is returned by registration when the email is already
// taken. Registration reports duplicates distinctly, an explicit tradeoff.
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrInvalidCredentials is the single error for both an unknown email and a
// wrong password, so callers cannot enumerate accounts.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken covers malformed, unsigned, unknown, and revoked session
// tokens. A bad token is an expected outcome, not an exceptional one.
var ErrInvalidToken = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidResetToken is returned when no reset token hash matches the
// supplied token for the account.
var ErrInvalidResetToken = goerrors.New("invalid password reset token", goerrors.CategoryNotFound).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(goerrors.CodeNotFound)

// ErrResetTokenExpired is returned when a matching reset token is past its TTL.
var ErrResetTokenExpired = goerrors.New("password reset token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired)

// ErrResetTokenConsumed is returned when a matching reset token was already
// used. Under concurrent confirms exactly one caller avoids this error.
var ErrResetTokenConsumed = goerrors.New("password reset token has already been used", goerrors.CategoryConflict).
	WithTextCode(TextCodeResetTokenConsumed)

// ErrNotFound is the generic missing-record error for account lookups.
var ErrNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(goerrors.CodeNotFound)

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsDuplicateEmail checks for the duplicate registration error.
func IsDuplicateEmail(err error) bool {
	return hasTextCode(err, TextCodeDuplicateEmail)
}

// IsInvalidCredentials checks for the collapsed login failure error.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsInvalidToken checks for any session token failure.
func IsInvalidToken(err error) bool {
	return hasTextCode(err, TextCodeInvalidToken)
}

// IsInvalidResetToken checks for an unknown reset token.
func IsInvalidResetToken(err error) bool {
	return hasTextCode(err, TextCodeInvalidResetToken)
}

// IsResetTokenExpired checks for a reset token past its TTL.
func IsResetTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeResetTokenExpired)
}

// IsResetTokenConsumed checks for an already-used reset token.
func IsResetTokenConsumed(err error) bool {
	return hasTextCode(err, TextCodeResetTokenConsumed)
}

// IsNotFound checks for missing records, including wrapped store errors.
func IsNotFound(err error) bool {
	return hasTextCode(err, TextCodeNotFound) || goerrors.IsNotFound(err)
}

// wrapStoreError keeps persistence failures distinguishable from domain
// outcomes. Rich errors pass through unchanged.
func wrapStoreError(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
