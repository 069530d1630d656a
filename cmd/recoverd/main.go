// Command recoverd serves the password recovery API.
//
// Configuration is read from the environment (and a .env file when
// present). The reset routes are mounted under /password and Prometheus
// metrics under /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/directory"
	"github.com/MrEthical07/goRecover/httpapi"
	"github.com/MrEthical07/goRecover/internal/logging"
	"github.com/MrEthical07/goRecover/internal/rate"
	promexport "github.com/MrEthical07/goRecover/metrics/export/prometheus"
	"github.com/MrEthical07/goRecover/notify"
	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "recoverd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Engine.Log.Prefix, cfg.Engine.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	dir, db, err := directory.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return err
	}
	defer db.Close()

	sender, closeSender, err := newSender(cfg, dir, logger)
	if err != nil {
		return err
	}
	defer closeSender()

	engine, err := goRecover.New().
		WithConfig(cfg.Engine).
		WithRedis(rdb).
		WithDirectory(dir).
		WithNotifier(sender).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api := httpapi.New(engine, logger)
	if cfg.RateLimit > 0 {
		limiter, err := rate.New(rdb, rate.Config{
			Prefix:      cfg.Engine.Reset.KeyPrefix + ":rl",
			MaxRequests: cfg.RateLimit,
			Window:      cfg.RateLimitWindow,
		})
		if err != nil {
			return err
		}
		api.WithThrottle(limiter, func(err error) bool { return errors.Is(err, rate.ErrRateLimited) })
	}
	api.Register(router.Group("/password"))
	router.GET("/metrics", gin.WrapH(promexport.NewPrometheusExporter(engine).Handler()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSender(cfg daemonConfig, dir *directory.SQL, logger *log.Logger) (notify.Sender, func(), error) {
	noop := func() {}
	switch cfg.Notifier {
	case "resend":
		s, err := notify.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom, dir.EmailByID, logger)
		return s, noop, err
	case "amqp":
		s, conn, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = conn.Close() }, nil
	case "http":
		s, err := notify.NewHTTPSender(notify.HTTPSenderConfig{
			BaseURL:    cfg.NotifyURL,
			SigningKey: []byte(cfg.NotifySigningKey),
		})
		return s, noop, err
	default:
		return notify.NewLogSender(logger), noop, nil
	}
}
