package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goRecover/policy"
)

// RecoveryIdentity is the flow-level view of a directory account.
type RecoveryIdentity struct {
	ID             int64
	LoginName      string
	Email          string
	OrganizationID int64
	Federated      bool
	RealName       string
}

// RecoveryOutcome is an expected, non-exceptional result. Code is empty on
// success.
type RecoveryOutcome struct {
	Code              string
	Detail            string
	Identity          *RecoveryIdentity
	CooldownRemaining time.Duration
	MinLength         int
	MaxLength         int
}

type RecoveryLogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type PasswordRecoveryMetrics struct {
	UserCheckRejected    int
	CooldownHit          int
	TokenIssued          int
	TokenSuperseded      int
	NotifyFailed         int
	RedeemSuccess        int
	RedeemInvalidToken   int
	RedeemPolicyRejected int
	RedeemPersistFailed  int
	TokenInvalidateError int
}

type PasswordRecoveryCodes struct {
	EmailFormatInvalid          string
	AccountNotFound             string
	FederatedAccountCannotReset string
	CooldownActive              string
	InvalidOrExpiredToken       string
	PasswordPolicyViolation     string
	NotificationFailed          string
	PersistenceFailed           string
}

type PasswordRecoveryErrors struct {
	EngineNotReady    error
	TokenGeneration   error
	PolicyUnavailable error
}

type PasswordRecoveryDeps struct {
	TokenTTL       time.Duration
	CooldownWindow time.Duration
	NotifyTimeout  time.Duration
	ResetLink      func(string) string

	ValidEmail         func(string) bool
	FindByEmail        func(context.Context, string) (RecoveryIdentity, error)
	IsIdentityNotFound func(error) bool
	UpdateCredentials  func(context.Context, int64, string) (RecoveryIdentity, error)
	RecentHashes       func(context.Context, int64, int) ([]string, error)

	OrganizationPolicy func(context.Context, int64) (*policy.OrganizationPolicy, error)
	CheckComplexity    func(context.Context, string, policy.Subject, *policy.OrganizationPolicy) error
	ValidateLength     func(context.Context, string, int64, bool) (bool, error)
	HashPassword       func(string) (string, error)
	IsHashRejected     func(error) bool

	Cooldown        func(context.Context, string) (time.Duration, bool, error)
	MarkCooldown    func(context.Context, string, time.Duration) (bool, error)
	IssueToken      func(context.Context, string, string, time.Duration) (bool, error)
	LookupByToken   func(context.Context, string) (string, bool, error)
	ClaimToken      func(context.Context, string) (bool, error)
	ReleaseToken    func(context.Context, string) error
	InvalidateToken func(context.Context, string) error
	NewToken        func() (string, error)
	WellFormedToken func(string) bool

	SendForgotPassword  func(context.Context, RecoveryIdentity, string) error
	SendPasswordChanged func(context.Context, RecoveryIdentity)

	MapStoreError     func(error) error
	MapDirectoryError func(error) error
	MapHashError      func(error) error

	MetricInc func(int)
	Logger    RecoveryLogger

	Metrics PasswordRecoveryMetrics
	Codes   PasswordRecoveryCodes
	Errors  PasswordRecoveryErrors
}

// RunCheckUserByEmail validates the address and resolves a resettable account.
func RunCheckUserByEmail(ctx context.Context, email string, deps PasswordRecoveryDeps) (RecoveryOutcome, error) {
	normalizePasswordRecoveryDeps(&deps)
	if deps.FindByEmail == nil {
		return RecoveryOutcome{}, deps.Errors.EngineNotReady
	}

	if !deps.ValidEmail(email) {
		deps.MetricInc(deps.Metrics.UserCheckRejected)
		return RecoveryOutcome{Code: deps.Codes.EmailFormatInvalid}, nil
	}

	identity, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if deps.IsIdentityNotFound(err) {
			deps.MetricInc(deps.Metrics.UserCheckRejected)
			return RecoveryOutcome{Code: deps.Codes.AccountNotFound}, nil
		}
		return RecoveryOutcome{}, deps.MapDirectoryError(err)
	}
	if identity.Federated {
		deps.MetricInc(deps.Metrics.UserCheckRejected)
		return RecoveryOutcome{Code: deps.Codes.FederatedAccountCannotReset}, nil
	}

	return RecoveryOutcome{Identity: &identity}, nil
}

// RunCheckCooldown reports whether issuance is currently blocked for email.
func RunCheckCooldown(ctx context.Context, email string, deps PasswordRecoveryDeps) (RecoveryOutcome, error) {
	normalizePasswordRecoveryDeps(&deps)
	if deps.Cooldown == nil {
		return RecoveryOutcome{}, deps.Errors.EngineNotReady
	}

	remaining, active, err := deps.Cooldown(ctx, email)
	if err != nil {
		return RecoveryOutcome{}, deps.MapStoreError(err)
	}
	if active {
		deps.MetricInc(deps.Metrics.CooldownHit)
		return RecoveryOutcome{Code: deps.Codes.CooldownActive, CooldownRemaining: remaining}, nil
	}
	return RecoveryOutcome{}, nil
}

// RunIssueResetToken issues a token for email and notifies the account owner.
// The cooldown mark is acquired before anything else is written, so of two
// concurrent requests only one issues.
func RunIssueResetToken(ctx context.Context, email string, deps PasswordRecoveryDeps) (RecoveryOutcome, error) {
	normalizePasswordRecoveryDeps(&deps)
	if deps.MarkCooldown == nil || deps.IssueToken == nil || deps.NewToken == nil || deps.SendForgotPassword == nil {
		return RecoveryOutcome{}, deps.Errors.EngineNotReady
	}

	out, err := RunCheckUserByEmail(ctx, email, deps)
	if err != nil || out.Code != "" {
		return out, err
	}
	identity := *out.Identity

	out, err = RunCheckCooldown(ctx, email, deps)
	if err != nil || out.Code != "" {
		return out, err
	}

	acquired, err := deps.MarkCooldown(ctx, email, deps.CooldownWindow)
	if err != nil {
		return RecoveryOutcome{}, deps.MapStoreError(err)
	}
	if !acquired {
		remaining, _, err := deps.Cooldown(ctx, email)
		if err != nil {
			return RecoveryOutcome{}, deps.MapStoreError(err)
		}
		deps.MetricInc(deps.Metrics.CooldownHit)
		return RecoveryOutcome{Code: deps.Codes.CooldownActive, CooldownRemaining: remaining}, nil
	}

	token, err := deps.NewToken()
	if err != nil {
		return RecoveryOutcome{}, errors.Join(deps.Errors.TokenGeneration, err)
	}

	superseded, err := deps.IssueToken(ctx, identity.Email, token, deps.TokenTTL)
	if err != nil {
		return RecoveryOutcome{}, deps.MapStoreError(err)
	}
	if superseded {
		deps.MetricInc(deps.Metrics.TokenSuperseded)
	}
	deps.MetricInc(deps.Metrics.TokenIssued)

	sendCtx := ctx
	if deps.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, deps.NotifyTimeout)
		defer cancel()
	}
	if err := deps.SendForgotPassword(sendCtx, identity, deps.ResetLink(token)); err != nil {
		deps.MetricInc(deps.Metrics.NotifyFailed)
		deps.Logger.Warnf("forgot-password notice to %s failed: %v", identity.Email, err)
		return RecoveryOutcome{Code: deps.Codes.NotificationFailed, Identity: &identity}, nil
	}

	deps.Logger.Infof("reset token issued for %s", identity.Email)
	return RecoveryOutcome{Identity: &identity}, nil
}

// RunCheckTokenAvailable reports whether token still resolves to an email.
func RunCheckTokenAvailable(ctx context.Context, token string, deps PasswordRecoveryDeps) (bool, error) {
	normalizePasswordRecoveryDeps(&deps)
	if deps.LookupByToken == nil {
		return false, deps.Errors.EngineNotReady
	}
	if !deps.WellFormedToken(token) {
		return false, nil
	}

	_, ok, err := deps.LookupByToken(ctx, token)
	if err != nil {
		return false, deps.MapStoreError(err)
	}
	return ok, nil
}

// RunRedeemResetToken exchanges a live token for a new password. Nothing is
// written unless every policy gate passes.
//
// The token is claimed before it is read, so of several concurrent
// redemptions only one reaches the commit; the others see an invalid token.
// A claim that does not end in a commit is released and the token stays
// usable.
func RunRedeemResetToken(ctx context.Context, token, newPassword string, deps PasswordRecoveryDeps) (RecoveryOutcome, error) {
	normalizePasswordRecoveryDeps(&deps)
	if deps.LookupByToken == nil || deps.ClaimToken == nil || deps.FindByEmail == nil || deps.UpdateCredentials == nil || deps.HashPassword == nil {
		return RecoveryOutcome{}, deps.Errors.EngineNotReady
	}

	invalid := func() (RecoveryOutcome, error) {
		deps.MetricInc(deps.Metrics.RedeemInvalidToken)
		return RecoveryOutcome{Code: deps.Codes.InvalidOrExpiredToken}, nil
	}

	if !deps.WellFormedToken(token) {
		return invalid()
	}

	claimed, err := deps.ClaimToken(ctx, token)
	if err != nil {
		return RecoveryOutcome{}, deps.MapStoreError(err)
	}
	if !claimed {
		return invalid()
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := deps.ReleaseToken(context.WithoutCancel(ctx), token); err != nil {
			deps.Logger.Warnf("release reset token claim: %v", err)
		}
	}()

	email, ok, err := deps.LookupByToken(ctx, token)
	if err != nil {
		return RecoveryOutcome{}, deps.MapStoreError(err)
	}
	if !ok {
		return invalid()
	}

	identity, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if deps.IsIdentityNotFound(err) {
			return invalid()
		}
		return RecoveryOutcome{}, deps.MapDirectoryError(err)
	}
	if identity.Federated {
		return RecoveryOutcome{Code: deps.Codes.FederatedAccountCannotReset}, nil
	}

	org, err := deps.OrganizationPolicy(ctx, identity.OrganizationID)
	if err != nil {
		return RecoveryOutcome{}, errors.Join(deps.Errors.PolicyUnavailable, err)
	}
	subject := policy.Subject{LoginName: identity.LoginName}
	if org != nil && org.EnablePassword && org.NotRecentCount > 0 {
		subject.RecentHashes, err = deps.RecentHashes(ctx, identity.ID, org.NotRecentCount)
		if err != nil {
			return RecoveryOutcome{}, deps.MapDirectoryError(err)
		}
	}

	if err := deps.CheckComplexity(ctx, newPassword, subject, org); err != nil {
		var cv *policy.ComplexityViolation
		if errors.As(err, &cv) {
			deps.MetricInc(deps.Metrics.RedeemPolicyRejected)
			return RecoveryOutcome{Code: deps.Codes.PasswordPolicyViolation, Detail: cv.Reason}, nil
		}
		return RecoveryOutcome{}, errors.Join(deps.Errors.PolicyUnavailable, err)
	}

	ok, err = deps.ValidateLength(ctx, newPassword, identity.OrganizationID, true)
	if err != nil {
		var lv *policy.LengthViolation
		if errors.As(err, &lv) {
			deps.MetricInc(deps.Metrics.RedeemPolicyRejected)
			return RecoveryOutcome{
				Code:      deps.Codes.PasswordPolicyViolation,
				Detail:    lv.Error(),
				MinLength: lv.Min,
				MaxLength: lv.Max,
			}, nil
		}
		return RecoveryOutcome{}, errors.Join(deps.Errors.PolicyUnavailable, err)
	}
	if !ok {
		deps.MetricInc(deps.Metrics.RedeemPolicyRejected)
		return RecoveryOutcome{Code: deps.Codes.PasswordPolicyViolation}, nil
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		if deps.IsHashRejected(err) {
			deps.MetricInc(deps.Metrics.RedeemPolicyRejected)
			return RecoveryOutcome{Code: deps.Codes.PasswordPolicyViolation, Detail: err.Error()}, nil
		}
		return RecoveryOutcome{}, deps.MapHashError(err)
	}

	updated, err := deps.UpdateCredentials(ctx, identity.ID, hash)
	if err != nil {
		if deps.IsIdentityNotFound(err) {
			deps.MetricInc(deps.Metrics.RedeemPersistFailed)
			return RecoveryOutcome{Code: deps.Codes.PersistenceFailed}, nil
		}
		return RecoveryOutcome{}, deps.MapDirectoryError(err)
	}
	committed = true

	// The password is already committed; a stale token only lingers until TTL.
	if err := deps.InvalidateToken(ctx, token); err != nil {
		deps.MetricInc(deps.Metrics.TokenInvalidateError)
		deps.Logger.Errorf("invalidate reset token for %s: %v", updated.Email, err)
	}

	deps.SendPasswordChanged(ctx, updated)
	deps.MetricInc(deps.Metrics.RedeemSuccess)
	deps.Logger.Infof("password reset completed for %s", updated.Email)

	return RecoveryOutcome{Identity: &updated}, nil
}

type noopRecoveryLogger struct{}

func (noopRecoveryLogger) Debugf(string, ...interface{}) {}
func (noopRecoveryLogger) Infof(string, ...interface{})  {}
func (noopRecoveryLogger) Warnf(string, ...interface{})  {}
func (noopRecoveryLogger) Errorf(string, ...interface{}) {}

func normalizePasswordRecoveryDeps(deps *PasswordRecoveryDeps) {
	if deps.Errors.EngineNotReady == nil {
		deps.Errors.EngineNotReady = errors.New("engine not initialized")
	}
	if deps.Errors.TokenGeneration == nil {
		deps.Errors.TokenGeneration = errors.New("reset token generation failed")
	}
	if deps.Errors.PolicyUnavailable == nil {
		deps.Errors.PolicyUnavailable = errors.New("password policy unavailable")
	}
	if deps.ValidEmail == nil {
		deps.ValidEmail = func(s string) bool { return s != "" }
	}
	if deps.IsIdentityNotFound == nil {
		deps.IsIdentityNotFound = func(error) bool { return false }
	}
	if deps.RecentHashes == nil {
		deps.RecentHashes = func(context.Context, int64, int) ([]string, error) { return nil, nil }
	}
	if deps.OrganizationPolicy == nil {
		deps.OrganizationPolicy = func(context.Context, int64) (*policy.OrganizationPolicy, error) { return nil, nil }
	}
	if deps.CheckComplexity == nil {
		deps.CheckComplexity = func(context.Context, string, policy.Subject, *policy.OrganizationPolicy) error { return nil }
	}
	if deps.ValidateLength == nil {
		deps.ValidateLength = func(context.Context, string, int64, bool) (bool, error) { return true, nil }
	}
	if deps.IsHashRejected == nil {
		deps.IsHashRejected = func(error) bool { return false }
	}
	if deps.ReleaseToken == nil {
		deps.ReleaseToken = func(context.Context, string) error { return nil }
	}
	if deps.InvalidateToken == nil {
		deps.InvalidateToken = func(context.Context, string) error { return nil }
	}
	if deps.WellFormedToken == nil {
		deps.WellFormedToken = func(s string) bool { return s != "" }
	}
	if deps.ResetLink == nil {
		deps.ResetLink = func(token string) string { return token }
	}
	if deps.SendPasswordChanged == nil {
		deps.SendPasswordChanged = func(context.Context, RecoveryIdentity) {}
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(err error) error { return err }
	}
	if deps.MapDirectoryError == nil {
		deps.MapDirectoryError = func(err error) error { return err }
	}
	if deps.MapHashError == nil {
		deps.MapHashError = func(err error) error { return err }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Logger == nil {
		deps.Logger = noopRecoveryLogger{}
	}
}
