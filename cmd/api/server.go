package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/5w1tchy/book-records/internal/api/docs"
	mw "github.com/5w1tchy/book-records/internal/api/middlewares"
	"github.com/5w1tchy/book-records/internal/api/router"
	"github.com/5w1tchy/book-records/internal/config"
	"github.com/5w1tchy/book-records/internal/repo/booksrepo"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
)

func newLogger(cfg config.Config) hclog.Logger {
	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "book-records",
		Level:      level,
		JSONFormat: strings.EqualFold(cfg.LogFormat, "json"),
		Output:     os.Stderr,
	})
}

func main() {
	config.LoadDotEnv(".env", "../../.env")

	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := newLogger(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log hclog.Logger) (err error) {
	for _, w := range cfg.HardeningWarnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func(context.Context) error
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs *multierror.Error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierror.Append(errs, closers[i](shutCtx))
		}
		if cerr := errs.ErrorOrNil(); cerr != nil {
			log.Error("close failed", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	var rdb *redis.Client
	if cfg.RedisConfigured() {
		rdb, err = openRedis(ctx, cfg, log.Named("redis"))
		if err != nil {
			return err
		}
		closers = append(closers, func(context.Context) error { return rdb.Close() })
	}

	be, err := openBackend(ctx, cfg, rdb, log.Named("store"))
	if err != nil {
		return err
	}
	closers = append(closers, be.close)
	log.Info("connected", "backend", cfg.Backend)

	doc, err := docs.Load()
	if err != nil {
		return err
	}

	stack, err := middlewareStack(cfg, rdb, log)
	if err != nil {
		return err
	}
	handler := mw.Chain(
		router.Router(router.Deps{
			Books: booksrepo.New(be.store),
			Ping:  be.ping,
			Docs:  doc,
			Log:   log,
		}),
		stack...,
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server is running", "addr", cfg.Addr, "tls", cfg.TLSCert != "")
		if cfg.TLSCert != "" {
			serveErr <- server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutCtx)
}

func middlewareStack(cfg config.Config, rdb *redis.Client, log hclog.Logger) ([]mw.Middleware, error) {
	httpLog := log.Named("http")
	rlLog := log.Named("ratelimit")

	ips, err := mw.NewClientIP(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	stack := []mw.Middleware{
		mw.RequestID,
		mw.Recovery(httpLog),
		mw.AccessLog(httpLog, ips),
		mw.Cors(cfg.CORSOrigins, httpLog),
		mw.BodySizeLimit(cfg.MaxBodySize),
	}
	if rdb != nil {
		tb := mw.NewRedisTokenBucket(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst)
		sw := mw.NewRedisSlidingWindow(rdb, cfg.RateLimitHourly, time.Hour)
		stack = append(stack,
			mw.RateLimit(tb, ips.Key("tb"), rlLog),
			mw.RateLimit(sw, ips.Key("sw"), rlLog),
		)
	} else {
		local := mw.NewLocalRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		stack = append(stack, mw.RateLimit(local, ips.Key("tb"), rlLog))
	}
	return append(stack,
		mw.Compression,
		mw.SecurityHeaders(strings.EqualFold(cfg.AppEnv, "production")),
	), nil
}
