package goRecover

import (
	"errors"

	"github.com/MrEthical07/goRecover/internal/logging"
	"github.com/MrEthical07/goRecover/internal/stores"
	"github.com/MrEthical07/goRecover/notify"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/policy"
	"github.com/MrEthical07/goRecover/tokenstore"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder can be used for one Build call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  tokenstore.Store

	directory    Directory
	policySource policy.Source
	notifier     notify.Sender
	hasher       password.Hasher
	logger       *log.Logger
	messages     MessageCatalog

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. The value is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the token store with client under Config.Reset.KeyPrefix.
// It is ignored when WithTokenStore is also used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTokenStore sets the store for reset tokens and cooldown marks.
func (b *Builder) WithTokenStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithDirectory sets the user directory. It is required.
func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

// WithPolicySource sets where password policies are loaded from. When unset
// and the Directory also implements policy.Source, the Directory is used.
func (b *Builder) WithPolicySource(s policy.Source) *Builder {
	b.policySource = s
	return b
}

// WithNotifier sets the sender for forgot-password and password-changed
// notices. It is required.
func (b *Builder) WithNotifier(s notify.Sender) *Builder {
	b.notifier = s
	return b
}

// WithHasher overrides the hasher derived from Config.Password.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the logger. Engine log lines carry a request id when the
// context has one.
func (b *Builder) WithLogger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

// WithMessages overrides the user-facing message catalog.
func (b *Builder) WithMessages(m MessageCatalog) *Builder {
	b.messages = m
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the redeem latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("token store or redis client required")
		}
		store = tokenstore.NewRedisStore(b.redis, cfg.Reset.KeyPrefix)
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}

	source := b.policySource
	if source == nil {
		source, _ = b.directory.(policy.Source)
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := newHasher(cfg.Password)
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	logger := b.logger
	if logger == nil {
		logger = logging.New(cfg.Log.Prefix, cfg.Log.Level)
	}

	e := &Engine{
		config:     cfg,
		tokens:     stores.NewTokenPair(store),
		directory:  b.directory,
		length:     policy.NewLengthValidator(source),
		complexity: policy.NewComplexityChecker(hasher.Verify),
		source:     source,
		hasher:     hasher,
		notifier:   b.notifier,
		messages:   b.messages,
		metrics:    NewMetrics(cfg.Metrics),
		logger:     logger,
		validate:   validator.New(),
	}

	if cfg.Notify.Async {
		e.dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
			BufferSize: cfg.Notify.BufferSize,
			DropIfFull: cfg.Notify.DropIfFull,
			Timeout:    cfg.Notify.Timeout,
		}, b.notifier, func(n notify.Notice, err error) {
			logger.Warnf("async %s notice failed: %v", n.Code, err)
		})
	}

	b.built = true
	return e, nil
}

// newHasher hashes with the configured algorithm and keeps the other one for
// verifying older history entries.
func newHasher(cfg PasswordConfig) (password.Hasher, error) {
	argon, err := password.NewArgon2(password.Config{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	})
	if cfg.Algorithm == "bcrypt" {
		bc, bcErr := password.NewBcrypt(cfg.BcryptCost)
		if bcErr != nil {
			return nil, bcErr
		}
		if err != nil {
			return &password.Multi{Primary: bc}, nil
		}
		return &password.Multi{Primary: bc, Legacy: []password.Hasher{argon}}, nil
	}
	if err != nil {
		return nil, err
	}
	bc, err := password.NewBcrypt(0)
	if err != nil {
		return nil, err
	}
	return &password.Multi{Primary: argon, Legacy: []password.Hasher{bc}}, nil
}
