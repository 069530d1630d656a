package goRecover

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config is the full Engine configuration. Start from DefaultConfig and
// override fields; Builder validates the result.
type Config struct {
	Reset    ResetConfig
	Notify   NotifyConfig
	Password PasswordConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig controls token issuance.
type ResetConfig struct {
	// GatewayURL is the public origin the reset link points at.
	GatewayURL     string
	ResetPagePath  string
	TokenTTL       time.Duration
	CooldownWindow time.Duration
	KeyPrefix      string
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig bounds notifier calls. When Async is set, password-changed
// notices go through a buffered background dispatcher.
type NotifyConfig struct {
	Timeout    time.Duration
	Async      bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the hashing algorithm for new credentials. Hashes
// written by the other algorithm still verify during reuse checks.
type PasswordConfig struct {
	Algorithm   string // "argon2id" (default) or "bcrypt"
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters and the redeem latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
LOG CONFIG
====================================
*/

// LogConfig sets the level and line prefix of the default logger. It is
// ignored when Builder.WithLogger is used.
type LogConfig struct {
	Level  string // DEBUG, INFO, WARN, ERROR or OFF
	Prefix string
}

const (
	defaultResetPagePath = "/oauth/password/reset_page"
	defaultKeyPrefix     = "pwr"
)

func defaultConfig() Config {
	return Config{
		Reset: ResetConfig{
			ResetPagePath:  defaultResetPagePath,
			TokenTTL:       10 * time.Minute,
			CooldownWindow: 60 * time.Second,
			KeyPrefix:      defaultKeyPrefix,
		},
		Notify: NotifyConfig{
			Timeout:    5 * time.Second,
			BufferSize: 256,
		},
		Password: PasswordConfig{
			Algorithm:   "argon2id",
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			BcryptCost:  12,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "INFO",
			Prefix: "gorecover",
		},
	}
}

// DefaultConfig returns the production defaults: 10 minute tokens, a 60
// second issuance cooldown and Argon2id hashing. GatewayURL has no default.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Reset
	if strings.TrimSpace(c.Reset.GatewayURL) == "" {
		return errors.New("Reset GatewayURL required")
	}
	u, err := url.Parse(c.Reset.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Reset GatewayURL must be an absolute URL")
	}
	if !strings.HasPrefix(c.Reset.ResetPagePath, "/") {
		return errors.New("Reset ResetPagePath must start with /")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("Reset TokenTTL must be > 0")
	}
	if c.Reset.CooldownWindow <= 0 {
		return errors.New("Reset CooldownWindow must be > 0")
	}
	if c.Reset.CooldownWindow > c.Reset.TokenTTL {
		return errors.New("Reset CooldownWindow must be <= TokenTTL")
	}
	if strings.TrimSpace(c.Reset.KeyPrefix) == "" {
		return errors.New("Reset KeyPrefix required")
	}

	// Notify
	if c.Notify.Timeout <= 0 {
		return errors.New("Notify Timeout must be > 0")
	}
	if c.Notify.Async && c.Notify.BufferSize <= 0 {
		return errors.New("Notify BufferSize must be > 0 when Async is true")
	}

	// Password
	switch c.Password.Algorithm {
	case "argon2id":
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
	case "bcrypt":
		if c.Password.BcryptCost < 10 || c.Password.BcryptCost > 31 {
			return errors.New("Password BcryptCost must be between 10 and 31")
		}
	default:
		return errors.New("unsupported Password Algorithm")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Log
	switch strings.ToUpper(c.Log.Level) {
	case "", "DEBUG", "INFO", "WARN", "ERROR", "OFF":
	default:
		return errors.New("unsupported Log Level")
	}

	return nil
}

// ResetLink builds the URL delivered in the forgot-password notice.
func (c *Config) ResetLink(token string) string {
	return strings.TrimRight(c.Reset.GatewayURL, "/") + c.Reset.ResetPagePath + "/" + token
}
