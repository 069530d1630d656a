package goRecover

import "errors"

var (
	// ErrStoreUnavailable wraps token store failures.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrDirectoryUnavailable wraps user directory and policy source failures.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	// ErrHashFailed wraps password hashing failures.
	ErrHashFailed = errors.New("password hashing failed")
	// ErrTokenGeneration is returned when the system entropy source fails.
	ErrTokenGeneration = errors.New("reset token generation failed")
	// ErrPolicyUnavailable is returned when a password policy cannot be evaluated.
	ErrPolicyUnavailable = errors.New("password policy unavailable")
	// ErrIdentityNotFound is returned by a Directory when no account matches.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrEngineNotReady is returned when an Engine was not built by Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrorCode identifies an expected, non-exceptional outcome. It is stable and
// safe to expose to clients.
type ErrorCode string

const (
	// CodeEmailFormatInvalid means the address is not a syntactically valid email.
	CodeEmailFormatInvalid ErrorCode = "email_format_invalid"
	// CodeAccountNotFound means no account is registered under the address.
	CodeAccountNotFound ErrorCode = "account_not_found"
	// CodeFederatedAccountCannotReset means the account authenticates through
	// an external identity provider.
	CodeFederatedAccountCannotReset ErrorCode = "federated_account_cannot_reset"
	// CodeCooldownActive means a reset email was sent inside the cooldown window.
	CodeCooldownActive ErrorCode = "cooldown_active"
	// CodeInvalidOrExpiredToken means the token does not resolve to a live
	// reset, including while another request is redeeming it.
	CodeInvalidOrExpiredToken ErrorCode = "invalid_or_expired_token"
	// CodePasswordPolicyViolation means the new password was rejected by the
	// password policy.
	CodePasswordPolicyViolation ErrorCode = "password_policy_violation"
	// CodeNotificationFailed means the token was issued but its email was not sent.
	CodeNotificationFailed ErrorCode = "notification_failed"
	// CodePersistenceFailed means the account disappeared before the new
	// password was stored.
	CodePersistenceFailed ErrorCode = "persistence_failed"
)

// Codes lists every ErrorCode in a stable order.
func Codes() []ErrorCode {
	return []ErrorCode{
		CodeEmailFormatInvalid,
		CodeAccountNotFound,
		CodeFederatedAccountCannotReset,
		CodeCooldownActive,
		CodeInvalidOrExpiredToken,
		CodePasswordPolicyViolation,
		CodeNotificationFailed,
		CodePersistenceFailed,
	}
}
