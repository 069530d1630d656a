package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/joho/godotenv"
)

type daemonConfig struct {
	ListenAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBDriver string
	DBURL    string

	// RateLimit of zero disables per-IP throttling.
	RateLimit       int
	RateLimitWindow time.Duration

	Notifier         string
	ResendAPIKey     string
	ResendFrom       string
	AMQPURL          string
	AMQPExchange     string
	NotifyURL        string
	NotifySigningKey string

	Engine goRecover.Config
}

// loadConfig reads .env when present and then the process environment.
func loadConfig() (daemonConfig, error) {
	_ = godotenv.Load()
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (daemonConfig, error) {
	env := envReader{get: getenv}
	cfg := daemonConfig{
		ListenAddr:       env.str("RECOVER_ADDR", ":8080"),
		RedisAddr:        env.str("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:    env.str("REDIS_PASSWORD", ""),
		RedisDB:          env.int("REDIS_DB", 0),
		DBDriver:         env.str("DB_DRIVER", "postgres"),
		DBURL:            env.str("DB_URL", ""),
		RateLimit:        env.int("RATE_LIMIT", 30),
		RateLimitWindow:  env.duration("RATE_LIMIT_WINDOW", time.Minute),
		Notifier:         strings.ToLower(env.str("NOTIFIER", "log")),
		ResendAPIKey:     env.str("RESEND_API_KEY", ""),
		ResendFrom:       env.str("RESEND_FROM", ""),
		AMQPURL:          env.str("AMQP_URL", ""),
		AMQPExchange:     env.str("AMQP_EXCHANGE", "gorecover.notices"),
		NotifyURL:        env.str("NOTIFY_URL", ""),
		NotifySigningKey: env.str("NOTIFY_SIGNING_KEY", ""),
	}

	e := goRecover.DefaultConfig()
	e.Reset.GatewayURL = env.str("GATEWAY_URL", "")
	e.Reset.ResetPagePath = env.str("RESET_PAGE_PATH", e.Reset.ResetPagePath)
	e.Reset.TokenTTL = env.duration("RESET_TOKEN_TTL", e.Reset.TokenTTL)
	e.Reset.CooldownWindow = env.duration("RESET_COOLDOWN", e.Reset.CooldownWindow)
	e.Reset.KeyPrefix = env.str("RESET_KEY_PREFIX", e.Reset.KeyPrefix)
	e.Notify.Timeout = env.duration("NOTIFY_TIMEOUT", e.Notify.Timeout)
	e.Notify.Async = env.bool("NOTIFY_ASYNC", e.Notify.Async)
	e.Notify.BufferSize = env.int("NOTIFY_BUFFER", e.Notify.BufferSize)
	e.Password.Algorithm = env.str("PASSWORD_ALGORITHM", e.Password.Algorithm)
	e.Metrics.Enabled = env.bool("METRICS_ENABLED", e.Metrics.Enabled)
	e.Metrics.EnableLatencyHistograms = env.bool("METRICS_LATENCY", e.Metrics.EnableLatencyHistograms)
	e.Log.Level = env.str("LOG_LEVEL", e.Log.Level)
	cfg.Engine = e

	if env.err != nil {
		return daemonConfig{}, env.err
	}
	if err := cfg.validate(); err != nil {
		return daemonConfig{}, err
	}
	return cfg, nil
}

func (c daemonConfig) validate() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must be >= 0")
	}
	if c.RateLimit > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	switch c.Notifier {
	case "log":
	case "resend":
		if c.ResendAPIKey == "" || c.ResendFrom == "" {
			return fmt.Errorf("RESEND_API_KEY and RESEND_FROM are required for the resend notifier")
		}
	case "amqp":
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required for the amqp notifier")
		}
	case "http":
		if c.NotifyURL == "" || c.NotifySigningKey == "" {
			return fmt.Errorf("NOTIFY_URL and NOTIFY_SIGNING_KEY are required for the http notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}
	return c.Engine.Validate()
}

// envReader keeps the first parse error so loadConfig can report it once.
type envReader struct {
	get func(string) string
	err error
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(r.get(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v := strings.TrimSpace(r.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	v := strings.TrimSpace(r.get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.get(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *envReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
}
