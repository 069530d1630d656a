package policy

import (
	"context"
	"fmt"
)

// OrganizationPolicy is the per-organization password policy. When
// EnablePassword is false the organization defers to the system setting.
type OrganizationPolicy struct {
	OrganizationID   int64
	EnablePassword   bool
	MinLength        int
	MaxLength        int
	DigitsCount      int
	LowercaseCount   int
	UppercaseCount   int
	SpecialCharCount int
	NotUsername      bool
	Regex            string
	NotRecentCount   int
}

// SystemSetting holds the global length bounds. A nil bound is unset.
type SystemSetting struct {
	MinPasswordLength *int
	MaxPasswordLength *int
}

// Bounds returns both bounds and whether they are set.
func (s *SystemSetting) Bounds() (int, int, bool) {
	if s == nil || s.MinPasswordLength == nil || s.MaxPasswordLength == nil {
		return 0, 0, false
	}
	return *s.MinPasswordLength, *s.MaxPasswordLength, true
}

// Source loads policies. Both methods return (nil, nil) when nothing is configured.
type Source interface {
	OrganizationPolicy(ctx context.Context, organizationID int64) (*OrganizationPolicy, error)
	SystemSetting(ctx context.Context) (*SystemSetting, error)
}

// LengthViolation reports a candidate outside the system length bounds.
type LengthViolation struct {
	Min int
	Max int
}

func (v *LengthViolation) Error() string {
	return fmt.Sprintf("password length must be between %d and %d characters", v.Min, v.Max)
}

// Rule names reported by ComplexityViolation.
const (
	RuleMinLength   = "min_length"
	RuleMaxLength   = "max_length"
	RuleDigits      = "digits"
	RuleLowercase   = "lowercase"
	RuleUppercase   = "uppercase"
	RuleSpecial     = "special"
	RuleNotUsername = "not_username"
	RuleRegex       = "regex"
	RuleNotRecent   = "not_recent"
)

// ComplexityViolation reports the first organization rule a candidate broke.
type ComplexityViolation struct {
	Rule   string
	Reason string
}

func (v *ComplexityViolation) Error() string {
	return v.Reason
}

// Ints is a convenience for building a SystemSetting from literals.
func Ints(min, max int) *SystemSetting {
	return &SystemSetting{MinPasswordLength: &min, MaxPasswordLength: &max}
}
