package goRecover

import (
	"context"

	"github.com/MrEthical07/goRecover/internal/stores"
	"github.com/MrEthical07/goRecover/notify"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/policy"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// Engine runs the password recovery workflow. It is safe for concurrent use
// once built.
type Engine struct {
	config     Config
	tokens     *stores.TokenPair
	directory  Directory
	source     policy.Source
	length     *policy.LengthValidator
	complexity *policy.ComplexityChecker
	hasher     password.Hasher
	notifier   notify.Sender
	dispatcher *notify.Dispatcher
	messages   MessageCatalog
	metrics    *Metrics
	logger     *log.Logger
	validate   *validator.Validate
}

// Close drains queued notices. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.dispatcher != nil {
		e.dispatcher.Close()
	}
}

// NotifyDropped returns how many async notices were dropped on a full buffer.
func (e *Engine) NotifyDropped() uint64 {
	if e == nil || e.dispatcher == nil {
		return 0
	}
	return e.dispatcher.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// requestLogger prefixes log lines with the request id and client IP from ctx.
type requestLogger struct {
	logger *log.Logger
	prefix string
}

func (e *Engine) requestLogger(ctx context.Context) requestLogger {
	prefix := ""
	if id := requestIDFromContext(ctx); id != "" {
		prefix += "req=" + id + " "
	}
	if ip := clientIPFromContext(ctx); ip != "" {
		prefix += "ip=" + ip + " "
	}
	return requestLogger{logger: e.logger, prefix: prefix}
}

func (l requestLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(l.prefix+format, args...)
}

func (l requestLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(l.prefix+format, args...)
}

func (l requestLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(l.prefix+format, args...)
}

func (l requestLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(l.prefix+format, args...)
}
