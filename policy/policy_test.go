package policy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	org        *OrganizationPolicy
	setting    *SystemSetting
	orgErr     error
	settingErr error
	settingHit int
}

func (f *fakeSource) OrganizationPolicy(context.Context, int64) (*OrganizationPolicy, error) {
	return f.org, f.orgErr
}

func (f *fakeSource) SystemSetting(context.Context) (*SystemSetting, error) {
	f.settingHit++
	return f.setting, f.settingErr
}

func intPtr(v int) *int { return &v }

func TestLengthValidatorOrganizationPolicyWins(t *testing.T) {
	src := &fakeSource{
		org:     &OrganizationPolicy{EnablePassword: true},
		setting: Ints(8, 20),
	}
	ok, err := NewLengthValidator(src).Validate(context.Background(), "x", 1, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, src.settingHit, "system setting must not be consulted")
}

func TestLengthValidatorSkipsWhenSettingIncomplete(t *testing.T) {
	cases := map[string]*SystemSetting{
		"absent":      nil,
		"min only":    {MinPasswordLength: intPtr(8)},
		"max only":    {MaxPasswordLength: intPtr(20)},
		"both unset":  {},
	}
	for name, setting := range cases {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{
				org:     &OrganizationPolicy{EnablePassword: false},
				setting: setting,
			}
			ok, err := NewLengthValidator(src).Validate(context.Background(), "x", 1, true)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestLengthValidatorBounds(t *testing.T) {
	src := &fakeSource{setting: Ints(8, 20)}
	v := NewLengthValidator(src)
	ctx := context.Background()

	ok, err := v.Validate(ctx, "Sh0rt!pw", 1, true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Validate(ctx, "a b c d e f g h", 1, true)
	require.NoError(t, err)
	assert.True(t, ok, "spaces are stripped before counting")

	ok, err = v.Validate(ctx, "abc def", 1, true)
	assert.False(t, ok)
	var lv *LengthViolation
	require.True(t, errors.As(err, &lv))
	assert.Equal(t, 8, lv.Min)
	assert.Equal(t, 20, lv.Max)
	assert.Equal(t, "password length must be between 8 and 20 characters", lv.Error())

	ok, err = v.Validate(ctx, strings.Repeat("a", 21), 1, false)
	assert.False(t, ok)
	assert.NoError(t, err, "non-strict mode reports failure without an error")

	ok, err = v.Validate(ctx, strings.Repeat("é", 20), 1, true)
	require.NoError(t, err)
	assert.True(t, ok, "length counts characters, not bytes")
}

func TestLengthValidatorPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("db down")

	_, err := NewLengthValidator(&fakeSource{orgErr: boom}).Validate(context.Background(), "x", 1, false)
	assert.ErrorIs(t, err, boom)

	_, err = NewLengthValidator(&fakeSource{settingErr: boom}).Validate(context.Background(), "x", 1, false)
	assert.ErrorIs(t, err, boom)
}

func TestLengthValidatorNilSourceAccepts(t *testing.T) {
	ok, err := NewLengthValidator(nil).Validate(context.Background(), "", 1, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestComplexityCheckerDisabledPolicyIsNoop(t *testing.T) {
	c := NewComplexityChecker(nil)
	assert.NoError(t, c.Check(context.Background(), "x", Subject{}, nil))
	assert.NoError(t, c.Check(context.Background(), "x", Subject{}, &OrganizationPolicy{MinLength: 50}))
}

func TestComplexityCheckerRules(t *testing.T) {
	base := OrganizationPolicy{
		EnablePassword:   true,
		MinLength:        8,
		MaxLength:        16,
		DigitsCount:      1,
		LowercaseCount:   1,
		UppercaseCount:   1,
		SpecialCharCount: 1,
		NotUsername:      true,
	}

	tests := []struct {
		name      string
		candidate string
		mutate    func(*OrganizationPolicy)
		wantRule  string
	}{
		{name: "valid", candidate: "Sh0rt!pw"},
		{name: "too short", candidate: "S0!a", wantRule: RuleMinLength},
		{name: "too long", candidate: "Sh0rt!pwSh0rt!pwX", wantRule: RuleMaxLength},
		{name: "no digit", candidate: "Short!pwd", wantRule: RuleDigits},
		{name: "no lower", candidate: "SH0RT!PW", wantRule: RuleLowercase},
		{name: "no upper", candidate: "sh0rt!pw", wantRule: RuleUppercase},
		{name: "no special", candidate: "Sh0rtpwd", wantRule: RuleSpecial},
		{name: "login name", candidate: "Alice!123", wantRule: RuleNotUsername},
		{
			name:      "regex",
			candidate: "Sh0rt!pw",
			mutate:    func(p *OrganizationPolicy) { p.Regex = "^X" },
			wantRule:  RuleRegex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			err := NewComplexityChecker(nil).Check(context.Background(), tt.candidate, Subject{LoginName: "alice!123"}, &p)
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			var cv *ComplexityViolation
			require.True(t, errors.As(err, &cv), "got %v", err)
			assert.Equal(t, tt.wantRule, cv.Rule)
			assert.NotEmpty(t, cv.Error())
		})
	}
}

func TestComplexityCheckerBadRegexIsAnError(t *testing.T) {
	p := &OrganizationPolicy{EnablePassword: true, Regex: "("}
	err := NewComplexityChecker(nil).Check(context.Background(), "x", Subject{}, p)
	require.Error(t, err)
	var cv *ComplexityViolation
	assert.False(t, errors.As(err, &cv))
}

func TestComplexityCheckerRecentPasswords(t *testing.T) {
	verify := func(plain, hash string) (bool, error) {
		if hash == "broken" {
			return false, errors.New("bad hash")
		}
		return "h:"+plain == hash, nil
	}
	p := &OrganizationPolicy{EnablePassword: true, NotRecentCount: 2}
	c := NewComplexityChecker(verify)
	subject := Subject{RecentHashes: []string{"broken", "h:second", "h:third"}}

	var cv *ComplexityViolation
	err := c.Check(context.Background(), "second", subject, p)
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, RuleNotRecent, cv.Rule)

	assert.NoError(t, c.Check(context.Background(), "third", subject, p), "only the last N hashes are compared")
	assert.NoError(t, c.Check(context.Background(), "fresh", subject, p))
}
