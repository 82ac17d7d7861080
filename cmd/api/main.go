// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/admin"
	"github.com/carterperez-dev/templates/slip-market/internal/audit"
	"github.com/carterperez-dev/templates/slip-market/internal/auth"
	"github.com/carterperez-dev/templates/slip-market/internal/config"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/dashboard"
	"github.com/carterperez-dev/templates/slip-market/internal/dispute"
	"github.com/carterperez-dev/templates/slip-market/internal/finance"
	"github.com/carterperez-dev/templates/slip-market/internal/health"
	"github.com/carterperez-dev/templates/slip-market/internal/metrics"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/permission"
	"github.com/carterperez-dev/templates/slip-market/internal/server"
	"github.com/carterperez-dev/templates/slip-market/internal/settings"
	"github.com/carterperez-dev/templates/slip-market/internal/slip"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
	"github.com/carterperez-dev/templates/slip-market/internal/subscription"
	"github.com/carterperez-dev/templates/slip-market/internal/user"
	"github.com/carterperez-dev/templates/slip-market/internal/verification"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// backends holds the optional connections the store and rate limiter
// share. Either may be nil.
type backends struct {
	db    *core.Database
	redis *core.Redis
}

func (b *backends) close(logger *slog.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	conns, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conns.close(logger)

	store, storeChecker, err := openStore(ctx, cfg, conns)
	if err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	policy := access.Default()
	guard := middleware.NewGuard(policy)

	auditSvc := audit.NewService(store, cfg.Audit.Retention)
	settingsSvc := settings.NewService(store, auditSvc)

	userRepo := user.NewRepository(store)
	userSvc := user.NewService(userRepo, policy, user.WithAuditor(auditSvc))
	userHandler := user.NewHandler(userSvc)

	if cfg.Seed.DefaultUsers {
		if err := userSvc.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed default users: %w", err)
		}
	}

	authSvc := auth.NewService(jwtManager, userSvc)
	authHandler := auth.NewHandler(authSvc)

	subRepo := subscription.NewRepository(store)
	subSvc := subscription.NewService(
		subRepo,
		subscription.NewPricing(cfg.Subscription.Plans),
	)
	subHandler := subscription.NewHandler(subSvc, cfg.Countdown.TickInterval)
	janitor := subscription.NewJanitor(subSvc, cfg.Subscription.CleanupInterval, logger)

	verificationSvc := verification.NewService(store, auditSvc)
	slipSvc := slip.NewService(store, slip.Deps{
		Subscriptions: subSvc,
		Verifications: verificationSvc,
		Directory:     userSvc,
	})
	disputeSvc := dispute.NewService(store, slipSvc, auditSvc)
	financeSvc := finance.NewService(finance.Sources{
		Ledger:        subSvc,
		Settings:      settingsSvc,
		Users:         userSvc,
		Slips:         slipSvc,
		Disputes:      disputeSvc,
		Verifications: verificationSvc,
	})

	auditHandler := audit.NewHandler(auditSvc)
	settingsHandler := settings.NewHandler(settingsSvc)
	slipHandler := slip.NewHandler(slipSvc)
	disputeHandler := dispute.NewHandler(disputeSvc)
	verificationHandler := verification.NewHandler(verificationSvc)
	financeHandler := finance.NewHandler(financeSvc)

	dashboardHandler := dashboard.NewHandler(dashboard.NewService(store, userSvc,
		dashboard.WithLiveCount("openDisputes", disputeSvc.CountOpen),
		dashboard.WithLiveCount("pendingVerifications", verificationSvc.CountPending),
	))
	permissionHandler := permission.NewHandler(policy)

	checkers := []health.Checker{storeChecker}
	adminCfg := admin.HandlerConfig{
		Store:   storeChecker,
		Users:   userSvc,
		Sweeper: subSvc,
	}
	if conns.db != nil {
		if cfg.Storage.Driver != config.DriverPostgres {
			checkers = append(checkers, conns.db)
		}
		adminCfg.DBStats = conns.db.Stats
	}
	if conns.redis != nil {
		if cfg.Storage.Driver != config.DriverRedis {
			checkers = append(checkers, conns.redis)
		}
		adminCfg.RedisStats = conns.redis.PoolStats
	}

	healthHandler := health.NewHandler(checkers...)
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	var rdb redis.UniversalClient
	if conns.redis != nil {
		rdb = conns.redis.Client
	}
	limiter := middleware.NewRateLimiter(rdb, rateLimitConfig(cfg.RateLimit))

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(limiter.Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	maintenance := settings.MaintenanceGate(settingsSvc, policy)
	authenticated := func(next http.Handler) http.Handler {
		return authenticator(maintenance(limiter.ByRole(middleware.DefaultRoleLimits)(next)))
	}
	optionalAuth := func(next http.Handler) http.Handler {
		return middleware.OptionalAuth(authSvc)(maintenance(next))
	}

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		permissionHandler.RegisterRoutes(r, authenticated)

		subHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequirePermission(access.PurchaseSlips),
		)
		dashboardHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequirePermission(access.ViewDashboard),
			guard.RequireFeature(access.FeatureSettings),
		)
		userHandler.RegisterAdminRoutes(
			r,
			authenticated,
			guard.RequirePermission(access.ManageUsers),
		)
		adminHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequireFeature(access.FeatureSettings),
		)
		settingsHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequireFeature(access.FeatureSettings),
		)
		auditHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequireFeature(access.FeatureAuditLog),
			guard.RequireFeature(access.FeatureProofchain),
		)
		slipHandler.RegisterRoutes(
			r,
			optionalAuth,
			authenticated,
			guard.RequireFeature(access.FeatureCreateSlip),
		)
		disputeHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequirePermission(access.PurchaseSlips),
			guard.RequireFeature(access.FeatureDisputes),
		)
		verificationHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequirePermission(access.CreateSlips),
			guard.RequireFeature(access.FeatureVerifyTipsters),
		)
		financeHandler.RegisterRoutes(
			r,
			authenticated,
			guard.RequireFeature(access.FeatureFinance),
			guard.RequireFeature(access.FeatureReports),
		)
	})

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go janitor.Run(janitorCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// connect opens Postgres and Redis when configured. Redis is also used by
// the rate limiter, so it is connected whenever a URL is set.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	conns := &backends{}

	if cfg.Database.URL != "" {
		db, err := core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		conns.db = db
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)
	}

	if cfg.Redis.URL != "" {
		rdb, err := core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			conns.close(logger)
			return nil, err
		}
		conns.redis = rdb
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	return conns, nil
}

// openStore builds the configured key-value backend under the configured
// key prefix. The returned checker reports the backend's own health.
func openStore(
	ctx context.Context,
	cfg *config.Config,
	conns *backends,
) (storage.Store, health.Checker, error) {
	var (
		base    storage.Store
		checker health.Checker
	)

	switch cfg.Storage.Driver {
	case config.DriverRedis:
		base = storage.NewRedisStore(conns.redis.Client)
		checker = conns.redis
	case config.DriverPostgres:
		pg := storage.NewPostgresStore(conns.db.DB)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("prepare kv schema: %w", err)
		}
		base = pg
		checker = conns.db
	default:
		mem := storage.NewMemoryStore()
		base = mem
		checker = mem
	}

	return storage.Namespace(base, cfg.Storage.KeyPrefix), checker, nil
}

func rateLimitConfig(cfg config.RateLimitConfig) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Limit: redis_rate.Limit{
			Rate:   cfg.Requests,
			Burst:  cfg.Burst,
			Period: cfg.Window,
		},
		FailOpen: true,
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
