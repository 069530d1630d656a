package policy

import (
	"context"
	"strings"
	"unicode/utf8"
)

// LengthValidator applies the effective length rule: an organization with its
// own policy enabled is exempt, otherwise the system bounds apply when both are
// set.
type LengthValidator struct {
	source Source
}

// NewLengthValidator returns a validator reading policies from source. A nil
// source accepts every candidate.
func NewLengthValidator(source Source) *LengthValidator {
	return &LengthValidator{source: source}
}

// Validate reports whether candidate satisfies the length rule for the
// organization. When strict is true a failure is returned as a
// *LengthViolation, otherwise as (false, nil). Source errors are returned in
// both modes.
func (v *LengthValidator) Validate(ctx context.Context, candidate string, organizationID int64, strict bool) (bool, error) {
	if v == nil || v.source == nil {
		return true, nil
	}

	org, err := v.source.OrganizationPolicy(ctx, organizationID)
	if err != nil {
		return false, err
	}
	if org != nil && org.EnablePassword {
		return true, nil
	}

	setting, err := v.source.SystemSetting(ctx)
	if err != nil {
		return false, err
	}
	min, max, ok := setting.Bounds()
	if !ok {
		return true, nil
	}

	n := utf8.RuneCountInString(strings.ReplaceAll(candidate, " ", ""))
	if n >= min && n <= max {
		return true, nil
	}
	if strict {
		return false, &LengthViolation{Min: min, Max: max}
	}
	return false, nil
}
