package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/diewo77/go-orders/internal/cache"
	"github.com/diewo77/go-orders/internal/config"
	"github.com/diewo77/go-orders/internal/db"
	"github.com/diewo77/go-orders/internal/events"
	"github.com/diewo77/go-orders/internal/policy"
	"github.com/diewo77/go-orders/internal/repository"
	"github.com/diewo77/go-orders/internal/server"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

const (
	shutdownTimeout = 10 * time.Second
	rabbitAttempts  = 5
)

func main() {
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := newLogger(cfg.App)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, conn); err != nil {
			return err
		}
		log.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.SeedAdmin(conn, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seeding completed")
		return nil
	}

	if cfg.App.Migrations || cfg.Database.Driver == "sqlite" {
		if err := migrate(cfg, conn); err != nil {
			return err
		}
		log.Info("migrations completed")
	}
	if err := db.CheckSchema(conn); err != nil {
		return err
	}
	if err := db.SeedAdmin(conn, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	var principals gate.Resolver[uint, auth.Principal] = policy.NewDBPrincipalResolver(repository.NewUserRepository(conn))
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// the cache falls back to the database on every Redis error
			log.Warn("redis not reachable, principal cache degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		principals = cache.NewPrincipalCache(rdb, principals, cfg.Redis.TTL, log)
		log.Info("redis principal cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	authGate := policy.NewAuthGate(principals, cfg.Auth.CacheTTL)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		rabbit, err := events.DialRabbit(cfg.AMQP.URL, cfg.AMQP.Exchange, rabbitAttempts, log)
		if err != nil {
			return err
		}
		defer func() { _ = rabbit.Close() }()
		publisher = rabbit
	}

	if cfg.Auth.Secret == "" {
		log.Warn("AUTH_SECRET not set, using the built-in development secret")
	}
	signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: server.New(server.Deps{
			DB:      conn,
			Signer:  signer,
			Gate:    authGate,
			Events:  publisher,
			Log:     log,
			AppName: cfg.App.Name,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

// migrate applies the versioned SQL migrations on PostgreSQL when enabled
// and falls back to model-driven migration otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.Database.Driver == "postgres" && cfg.App.Migrations {
		return db.MigrateSQL(cfg.Database.URL())
	}
	return db.AutoMigrate(conn)
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if app.Dev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build(zap.Fields(zap.String("app", app.Name)))
}
