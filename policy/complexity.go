package policy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Subject carries what the complexity rules need to know about the account.
type Subject struct {
	LoginName    string
	RecentHashes []string
}

// VerifyFunc reports whether plaintext matches an encoded hash.
type VerifyFunc func(plaintext, encodedHash string) (bool, error)

// ComplexityChecker enforces an enabled organization policy.
type ComplexityChecker struct {
	verify VerifyFunc
}

// NewComplexityChecker returns a checker. verify is only used by the
// NotRecentCount rule; when nil that rule is skipped.
func NewComplexityChecker(verify VerifyFunc) *ComplexityChecker {
	return &ComplexityChecker{verify: verify}
}

// Check returns nil when p is nil or disabled, a *ComplexityViolation for the
// first rule that fails, or a plain error if the regex or hash verification
// cannot be evaluated.
func (c *ComplexityChecker) Check(ctx context.Context, candidate string, subject Subject, p *OrganizationPolicy) error {
	if p == nil || !p.EnablePassword {
		return nil
	}

	length := utf8.RuneCountInString(candidate)
	if p.MinLength > 0 && length < p.MinLength {
		return violation(RuleMinLength, "password must be at least %d characters", p.MinLength)
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return violation(RuleMaxLength, "password must be at most %d characters", p.MaxLength)
	}

	var digits, lower, upper, special int
	for _, r := range candidate {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special++
		}
	}
	if digits < p.DigitsCount {
		return violation(RuleDigits, "password must contain at least %d digits", p.DigitsCount)
	}
	if lower < p.LowercaseCount {
		return violation(RuleLowercase, "password must contain at least %d lowercase letters", p.LowercaseCount)
	}
	if upper < p.UppercaseCount {
		return violation(RuleUppercase, "password must contain at least %d uppercase letters", p.UppercaseCount)
	}
	if special < p.SpecialCharCount {
		return violation(RuleSpecial, "password must contain at least %d special characters", p.SpecialCharCount)
	}

	if p.NotUsername && subject.LoginName != "" && strings.EqualFold(candidate, subject.LoginName) {
		return violation(RuleNotUsername, "password must not equal the login name")
	}

	if p.Regex != "" {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return fmt.Errorf("compile password policy regex: %w", err)
		}
		if !re.MatchString(candidate) {
			return violation(RuleRegex, "password does not match the required pattern")
		}
	}

	if p.NotRecentCount > 0 && c != nil && c.verify != nil {
		recent := subject.RecentHashes
		if len(recent) > p.NotRecentCount {
			recent = recent[:p.NotRecentCount]
		}
		for _, h := range recent {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := c.verify(candidate, h)
			if err != nil {
				continue
			}
			if ok {
				return violation(RuleNotRecent, "password must differ from the last %d passwords", p.NotRecentCount)
			}
		}
	}

	return nil
}

func violation(rule, format string, args ...any) *ComplexityViolation {
	return &ComplexityViolation{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
