package accounts

import "context"

// ResetNotifier hands a freshly created reset token to an out-of-band
// delivery channel, typically email. Delivery itself is outside this
// package; implementations receive the clear token exactly once.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, email, accountKey, token string) error
}

// ResetNotifierFunc adapts a function into a ResetNotifier.
type ResetNotifierFunc func(ctx context.Context, email, accountKey, token string) error

func (f ResetNotifierFunc) NotifyReset(ctx context.Context, email, accountKey, token string) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, accountKey, token)
}

// logNotifier is the development fallback: it prints the reset link target
// instead of delivering it.
type logNotifier struct {
	logger Logger
}

func (n logNotifier) NotifyReset(_ context.Context, email, accountKey, _ string) error {
	n.logger.Info("password reset requested", "email", email, "account", accountKey)
	return nil
}
