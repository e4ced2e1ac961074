package accounts_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/mock"
)

func testConfig() accounts.SimpleConfig {
	return accounts.SimpleConfig{
		SigningKey:    "test-signing-key",
		Issuer:        "accounts-test",
		Audience:      []string{"api"},
		DefaultScopes: []string{"default"},
		AllowedScopes: []string{"buyer", "seller"},
		ResetTokenTTL: "30m",
	}
}

// capturingNotifier records every reset notification it receives.
type capturingNotifier struct {
	mu            sync.Mutex
	notifications []capturedReset
	err           error
}

type capturedReset struct {
	Email      string
	AccountKey string
	Token      string
}

func (n *capturingNotifier) NotifyReset(_ context.Context, email, accountKey, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, capturedReset{
		Email:      email,
		AccountKey: accountKey,
		Token:      token,
	})
	return n.err
}

func (n *capturingNotifier) last() (capturedReset, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifications) == 0 {
		return capturedReset{}, false
	}
	return n.notifications[len(n.notifications)-1], true
}

// MockLogger implements accounts.Logger for tests that assert on logging.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// quietLogger drops everything; used where default stdout logging is noise.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}
