package accounts

import (
	"fmt"
)

// Logger is the minimal logging surface the package needs. Credential
// material is never passed to it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the knobs every component reads at construction time.
// Scope lists are explicit values here, not ad hoc environment strings.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetDefaultScopes() []string
	GetAllowedScopes() []string
	GetResetTokenTTL() string
}

// SimpleConfig is a plain value implementation of Config, handy for tests
// and for embedding in application configuration.
type SimpleConfig struct {
	SigningKey    string
	Issuer        string
	Audience      []string
	DefaultScopes []string
	AllowedScopes []string
	ResetTokenTTL string
}

func (c SimpleConfig) GetSigningKey() string      { return c.SigningKey }
func (c SimpleConfig) GetIssuer() string          { return c.Issuer }
func (c SimpleConfig) GetAudience() []string      { return c.Audience }
func (c SimpleConfig) GetDefaultScopes() []string { return c.DefaultScopes }
func (c SimpleConfig) GetAllowedScopes() []string { return c.AllowedScopes }
func (c SimpleConfig) GetResetTokenTTL() string   { return c.ResetTokenTTL }

var _ Config = SimpleConfig{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
