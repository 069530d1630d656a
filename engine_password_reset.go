package goRecover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goRecover/internal"
	"github.com/MrEthical07/goRecover/internal/flows"
	"github.com/MrEthical07/goRecover/notify"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/policy"
)

// redeemClaimTTL bounds how long a crashed redemption can hold a token.
const redeemClaimTTL = time.Minute

// CheckUserByEmail reports whether email belongs to an account whose password
// can be reset here. It has no side effects.
func (e *Engine) CheckUserByEmail(ctx context.Context, email string) (Result, error) {
	out, err := flows.RunCheckUserByEmail(ctx, email, e.passwordRecoveryDeps(ctx))
	if err != nil {
		return Result{}, err
	}
	return e.result(out), nil
}

// CheckCooldown reports whether a reset email was issued for email within the
// cooldown window.
func (e *Engine) CheckCooldown(ctx context.Context, email string) (Result, error) {
	out, err := flows.RunCheckCooldown(ctx, email, e.passwordRecoveryDeps(ctx))
	if err != nil {
		return Result{}, err
	}
	return e.result(out), nil
}

// IssueResetToken issues a reset token for email and sends the
// forgot-password notice. Any token issued earlier for the same email stops
// working. A NotificationFailed result still leaves the new token valid.
func (e *Engine) IssueResetToken(ctx context.Context, email string) (Result, error) {
	out, err := flows.RunIssueResetToken(ctx, email, e.passwordRecoveryDeps(ctx))
	if err != nil {
		return Result{}, err
	}
	return e.result(out), nil
}

// CheckTokenAvailable reports whether token can still be redeemed.
func (e *Engine) CheckTokenAvailable(ctx context.Context, token string) (bool, error) {
	return flows.RunCheckTokenAvailable(ctx, token, e.passwordRecoveryDeps(ctx))
}

// RedeemResetToken sets a new password for the account token was issued to.
// The password must pass the organization complexity rules and the length
// rule. On success the token is consumed.
func (e *Engine) RedeemResetToken(ctx context.Context, token, newPassword string) (Result, error) {
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricRedeemLatency, time.Since(start))
		}()
	}

	out, err := flows.RunRedeemResetToken(ctx, token, newPassword, e.passwordRecoveryDeps(ctx))
	if err != nil {
		return Result{}, err
	}
	return e.result(out), nil
}

func (e *Engine) result(out flows.RecoveryOutcome) Result {
	r := Result{
		Success:           out.Code == "",
		Code:              ErrorCode(out.Code),
		CooldownRemaining: out.CooldownRemaining,
		MinLength:         out.MinLength,
		MaxLength:         out.MaxLength,
	}
	if out.Identity != nil {
		r.User = &UserView{
			ID:        out.Identity.ID,
			LoginName: out.Identity.LoginName,
			Email:     out.Identity.Email,
		}
	}
	r.Message = e.messages.Message(r.Code, out.Detail, ceilSeconds(out.CooldownRemaining))
	return r
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

func toRecoveryIdentity(id *Identity) flows.RecoveryIdentity {
	return flows.RecoveryIdentity{
		ID:             id.ID,
		LoginName:      id.LoginName,
		Email:          id.Email,
		OrganizationID: id.OrganizationID,
		Federated:      id.Federated,
		RealName:       id.RealName,
	}
}

func (e *Engine) sendPasswordChanged(ctx context.Context, logger requestLogger, id flows.RecoveryIdentity) {
	n := notify.Notice{
		Code:    notify.CodePasswordChanged,
		Targets: []notify.Target{{ID: id.ID}},
		Params:  map[string]any{"userName": id.RealName},
	}
	if e.dispatcher != nil {
		_ = e.dispatcher.Send(ctx, n)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.config.Notify.Timeout)
	defer cancel()
	if err := e.notifier.Send(sendCtx, n); err != nil {
		e.metricInc(MetricNotifyFailed)
		logger.Warnf("password-changed notice to user %d failed: %v", id.ID, err)
	}
}

func (e *Engine) passwordRecoveryDeps(ctx context.Context) flows.PasswordRecoveryDeps {
	if e == nil || e.tokens == nil || e.directory == nil {
		return flows.PasswordRecoveryDeps{Errors: flows.PasswordRecoveryErrors{EngineNotReady: ErrEngineNotReady}}
	}
	logger := e.requestLogger(ctx)

	return flows.PasswordRecoveryDeps{
		TokenTTL:       e.config.Reset.TokenTTL,
		CooldownWindow: e.config.Reset.CooldownWindow,
		NotifyTimeout:  e.config.Notify.Timeout,
		ResetLink:      e.config.ResetLink,

		ValidEmail: func(email string) bool {
			return e.validate.Var(email, "required,email") == nil
		},
		FindByEmail: func(ctx context.Context, email string) (flows.RecoveryIdentity, error) {
			id, err := e.directory.FindByEmail(ctx, email)
			if err != nil {
				return flows.RecoveryIdentity{}, err
			}
			if id == nil {
				return flows.RecoveryIdentity{}, ErrIdentityNotFound
			}
			return toRecoveryIdentity(id), nil
		},
		IsIdentityNotFound: func(err error) bool {
			return errors.Is(err, ErrIdentityNotFound)
		},
		UpdateCredentials: func(ctx context.Context, userID int64, hash string) (flows.RecoveryIdentity, error) {
			id, err := e.directory.UpdateCredentials(ctx, userID, hash)
			if err != nil {
				return flows.RecoveryIdentity{}, err
			}
			if id == nil {
				return flows.RecoveryIdentity{}, ErrIdentityNotFound
			}
			return toRecoveryIdentity(id), nil
		},
		RecentHashes: e.directory.RecentPasswordHashes,

		OrganizationPolicy: func(ctx context.Context, orgID int64) (*policy.OrganizationPolicy, error) {
			if e.source == nil {
				return nil, nil
			}
			p, err := e.source.OrganizationPolicy(ctx, orgID)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
			}
			return p, nil
		},
		CheckComplexity: e.complexity.Check,
		ValidateLength: func(ctx context.Context, candidate string, orgID int64, strict bool) (bool, error) {
			ok, err := e.length.Validate(ctx, candidate, orgID, strict)
			var lv *policy.LengthViolation
			if err != nil && !errors.As(err, &lv) {
				return false, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
			}
			return ok, err
		},
		HashPassword: e.hasher.Hash,
		IsHashRejected: func(err error) bool {
			return errors.Is(err, password.ErrPasswordTooLong)
		},

		Cooldown:        e.tokens.Cooldown,
		MarkCooldown:    e.tokens.MarkCooldown,
		IssueToken:      e.tokens.Issue,
		LookupByToken:   e.tokens.LookupByToken,
		ReleaseToken:    e.tokens.Release,
		InvalidateToken: e.tokens.Invalidate,
		NewToken:        internal.NewResetToken,
		WellFormedToken: internal.WellFormedResetToken,
		ClaimToken: func(ctx context.Context, token string) (bool, error) {
			return e.tokens.Claim(ctx, token, redeemClaimTTL)
		},

		SendForgotPassword: func(ctx context.Context, id flows.RecoveryIdentity, link string) error {
			return e.notifier.Send(ctx, notify.Notice{
				Code:    notify.CodeForgotPassword,
				Targets: []notify.Target{{Email: id.Email}},
				Params: map[string]any{
					"userName":    id.LoginName,
					"redirectUrl": link,
				},
			})
		},
		SendPasswordChanged: func(ctx context.Context, id flows.RecoveryIdentity) {
			e.sendPasswordChanged(ctx, logger, id)
		},

		MapStoreError: func(err error) error {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		},
		MapDirectoryError: func(err error) error {
			if errors.Is(err, ErrDirectoryUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
		},
		MapHashError: func(err error) error {
			return fmt.Errorf("%w: %w", ErrHashFailed, err)
		},

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		Logger:    logger,

		Metrics: flows.PasswordRecoveryMetrics{
			UserCheckRejected:    int(MetricUserCheckRejected),
			CooldownHit:          int(MetricCooldownHit),
			TokenIssued:          int(MetricResetTokenIssued),
			TokenSuperseded:      int(MetricResetTokenSuperseded),
			NotifyFailed:         int(MetricNotifyFailed),
			RedeemSuccess:        int(MetricRedeemSuccess),
			RedeemInvalidToken:   int(MetricRedeemInvalidToken),
			RedeemPolicyRejected: int(MetricRedeemPolicyRejected),
			RedeemPersistFailed:  int(MetricRedeemPersistenceFailed),
			TokenInvalidateError: int(MetricTokenInvalidateFailed),
		},
		Codes: flows.PasswordRecoveryCodes{
			EmailFormatInvalid:          string(CodeEmailFormatInvalid),
			AccountNotFound:             string(CodeAccountNotFound),
			FederatedAccountCannotReset: string(CodeFederatedAccountCannotReset),
			CooldownActive:              string(CodeCooldownActive),
			InvalidOrExpiredToken:       string(CodeInvalidOrExpiredToken),
			PasswordPolicyViolation:     string(CodePasswordPolicyViolation),
			NotificationFailed:          string(CodeNotificationFailed),
			PersistenceFailed:           string(CodePersistenceFailed),
		},
		Errors: flows.PasswordRecoveryErrors{
			EngineNotReady:    ErrEngineNotReady,
			TokenGeneration:   ErrTokenGeneration,
			PolicyUnavailable: ErrPolicyUnavailable,
		},
	}
}
