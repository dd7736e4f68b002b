package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	docs "github.com/tazhibayda/authflow/docs"
	"github.com/tazhibayda/authflow/internal/auth"
	"github.com/tazhibayda/authflow/internal/config"
	api "github.com/tazhibayda/authflow/internal/http"
	"github.com/tazhibayda/authflow/internal/log"
	"github.com/tazhibayda/authflow/internal/mail"
	"github.com/tazhibayda/authflow/internal/metrics"
	"github.com/tazhibayda/authflow/internal/notify"
	"github.com/tazhibayda/authflow/internal/queue"
	"github.com/tazhibayda/authflow/internal/repo"
	"github.com/tazhibayda/authflow/internal/security"
)

const defaultJWTSecret = "default_secret_key"

type store interface {
	auth.Store
	api.Pinger
}

// @title Auth API
// @version 1.0.0
// @description Email/password accounts with OTP email verification and password reset.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "auth-service:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := log.Init(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(cfg.DDService), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}

	sender, closeSender, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeSender()
	async := notify.NewAsync(sender, 0)

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	svc := auth.NewService(st, issuer, security.RandomOTP{}, async, auth.Config{
		VerifyOTPTTL: cfg.VerifyOTPTTL,
		ResetOTPTTL:  cfg.ResetOTPTTL,
		BcryptCost:   cfg.BcryptCost,
	})

	docs.SwaggerInfo.BasePath = "/"
	h := api.NewHandler(svc, st, issuer, api.CookieFor(cfg.IsProduction()))
	r := api.NewRouter(h, api.RouterConfig{
		Service:     cfg.DDService,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.L().Info("auth-service starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.StoreDriver),
		zap.String("notify", cfg.NotifyDriver),
	)
	return serve(ctx, srv, 10*time.Second, async.Close)
}

// serve runs srv until ctx is done or the listener fails. drain runs on every
// exit after the server has stopped taking requests, so notifications already
// accepted are flushed before the deferred sender cleanup.
func serve(ctx context.Context, srv *stdhttp.Server, grace time.Duration, drain func()) error {
	defer drain()

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.L().Info("shutting down")
	case err := <-srvErr:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.L().Error("http shutdown", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		if cfg.IsProduction() {
			return nil, nil, errors.New("STORE_DRIVER=memory is not allowed in production")
		}
		return repo.NewMemoryStore(), func() {}, nil
	case "mongo":
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := repo.NewStore(cctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := s.EnsureIndexes(cctx); err != nil {
			_ = s.Close(context.Background())
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func newIssuer(cfg config.Config) (*security.Issuer, error) {
	if cfg.JWTPrivateKeyPath != "" {
		ring, err := security.LoadKeyRing(
			security.KeyFile{Kid: cfg.JWTKeyID, Path: cfg.JWTPrivateKeyPath},
			security.KeyFile{Kid: cfg.JWTNextKeyID, Path: cfg.JWTNextPrivateKeyPath},
		)
		if err != nil {
			return nil, fmt.Errorf("load signing keys: %w", err)
		}
		return security.NewRS256Issuer(ring, cfg.SessionTTL), nil
	}
	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return security.NewHS256Issuer(cfg.JWTSecret, cfg.SessionTTL), nil
}

func newNotifier(cfg config.Config) (notify.Sender, func(), error) {
	switch cfg.NotifyDriver {
	case "log":
		if cfg.IsProduction() {
			return nil, nil, errors.New("NOTIFY_DRIVER=log writes codes to the log and is not allowed in production")
		}
		return notify.LogSender{}, func() {}, nil
	case "smtp":
		s, err := mail.NewSender(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("smtp: %w", err)
		}
		return s, func() {}, nil
	case "rabbit":
		p, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbit: %w", err)
		}
		return p, func() { _ = p.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", cfg.NotifyDriver)
}

func newLimiter(ctx context.Context, cfg config.Config) (api.Limiter, func(), error) {
	if cfg.RateLimitPerMin <= 0 {
		return nil, func() {}, nil
	}
	if cfg.RedisAddr == "" {
		return api.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute), func() {}, nil
	}
	rds := repo.NewRedis(cfg.RedisAddr)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rds.Ping(pctx); err != nil {
		_ = rds.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return api.NewRedisLimiter(rds, cfg.RateLimitPerMin, time.Minute), func() { _ = rds.Close() }, nil
}
