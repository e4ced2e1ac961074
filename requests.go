package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Typed request payloads for the six external operations. Validate returns
// ozzo's validation.Errors, a structured map keyed by field path, so callers
// can surface the offending field directly.

// RegisterRequest carries a new registration. Scopes are optional; they are
// pruned against the configured allow list before anything persists.
type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Scopes   []string `json:"scopes,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 512)),
	)
}

// LoginRequest carries an authentication attempt.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenRequest carries an encoded session token for verify and logout.
type TokenRequest struct {
	Token string `json:"token"`
}

func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// SendResetRequest starts the password reset flow for an email.
type SendResetRequest struct {
	Email string `json:"email"`
}

func (r SendResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest completes a reset: account key, the clear token from
// the notification link, and the replacement password.
type ResetPasswordRequest struct {
	Key         string `json:"key"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required, is.UUID),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(1, 512)),
	)
}
