package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/glcore/internal/adapter/http"
	"github.com/iho/glcore/internal/adapter/http/handler"
	"github.com/iho/glcore/internal/adapter/http/middleware"
	"github.com/iho/glcore/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/glcore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/glcore/internal/adapter/repository/redis"
	"github.com/iho/glcore/internal/infrastructure/config"
	"github.com/iho/glcore/internal/infrastructure/eventpublisher"
	"github.com/iho/glcore/internal/infrastructure/logger"
	"github.com/iho/glcore/internal/infrastructure/metrics"
	"github.com/iho/glcore/internal/infrastructure/postgres"
	"github.com/iho/glcore/internal/infrastructure/redis"
	"github.com/iho/glcore/internal/usecase"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"

	eventStreamMaxLen = 100000
	limiterIdleAfter  = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "glcore"})
	log.Logger = appLogger

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

// storage is the set of persistence adapters selected by STORAGE_DRIVER.
type storage struct {
	txManager usecase.TransactionManager
	repos     usecase.Repositories
	retrier   usecase.Retrier
	checks    map[string]handler.Pinger
	close     func()
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *goredis.Client
	if cfg.StorageDriver != storageMemory {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		appLogger.Info().Msg("connected to redis")
		store.checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	dispatcher := usecase.NewDispatcher(appLogger)
	dispatcher.Subscribe(usecase.LogEvents(appLogger))

	deps := usecase.Deps{
		TxManager:  store.txManager,
		Repos:      store.repos,
		IDGen:      postgresRepo.NewULIDGenerator(),
		Retrier:    store.retrier,
		Dispatcher: dispatcher,
		Metrics:    m,
		Logger:     &appLogger,

		BalanceTolerance: cfg.BalanceTolerance,
	}

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(appLogger)
	)
	if redisClient != nil {
		cache = redisRepo.NewCache(redisClient, m)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient, m)
		publisher = redisRepo.NewStreamPublisher(redisClient, cfg.EventStream, eventStreamMaxLen, m)
	}
	resolver := redisRepo.NewAccountResolver(cache, chartFromConfig(cfg.Accounts), cfg.ChartCacheTTL, logger.Component(appLogger, "chart"))

	journalUC := usecase.NewJournalUseCase(deps, resolver)
	periodUC := usecase.NewPeriodUseCase(deps)
	closingUC := usecase.NewClosingUseCase(deps, resolver)
	ledgerUC := usecase.NewLedgerUseCase(deps)

	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.repos.Outbox,
		Publisher:  publisher,
		Logger:     logger.Component(appLogger, "outbox"),
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := outbox.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	go sweepLimiters(ctx, rateLimiter, appLogger)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		JournalEntryHandler: handler.NewJournalEntryHandler(journalUC),
		PeriodHandler:       handler.NewPeriodHandler(periodUC, closingUC),
		LedgerHandler:       handler.NewLedgerHandler(ledgerUC),
		ChartHandler:        handler.NewChartHandler(resolver),
		HealthHandler:       handler.NewHealthHandler(store.checks),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         rateLimiter,
		MetricsHandler:      promhttp.Handler(),
		Logger:              appLogger,
	})

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", server.Addr).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case storageMemory:
		s := memory.NewStore()
		appLogger.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			txManager: memory.NewTxManager(s),
			repos: usecase.Repositories{
				Entries:  memory.NewJournalEntryRepository(s),
				Periods:  memory.NewFinancialPeriodRepository(s),
				Balances: memory.NewAccountBalanceRepository(s),
				Postings: memory.NewLedgerPostingRepository(s),
				Outbox:   memory.NewOutboxRepository(s),
				Audit:    memory.NewAuditRepository(s),
			},
			checks: map[string]handler.Pinger{},
			close:  func() {},
		}, nil

	case storagePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		appLogger.Info().Msg("connected to postgres")

		return &storage{
			txManager: postgresRepo.NewTxManager(pool),
			repos: usecase.Repositories{
				Entries:  postgresRepo.NewJournalEntryRepository(pool),
				Periods:  postgresRepo.NewFinancialPeriodRepository(pool),
				Balances: postgresRepo.NewAccountBalanceRepository(pool),
				Postings: postgresRepo.NewLedgerPostingRepository(pool),
				Outbox:   postgresRepo.NewOutboxRepository(pool),
				Audit:    postgresRepo.NewAuditRepository(pool),
			},
			retrier: postgresRepo.NewRetrier(appLogger),
			checks:  map[string]handler.Pinger{"postgres": pool},
			close:   pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func chartFromConfig(a config.ChartOfAccounts) redisRepo.Chart {
	return redisRepo.Chart{
		Roles: map[string]string{
			redisRepo.RoleCash:                    a.Cash,
			redisRepo.RoleLoanReceivable:          a.LoanReceivable,
			redisRepo.RoleInterestIncome:          a.InterestIncome,
			redisRepo.RoleSalaryExpense:           a.SalaryExpense,
			redisRepo.RolePayrollPayable:          a.PayrollPayable,
			redisRepo.RoleAccumulatedDepreciation: a.AccumulatedDepreciation,
			redisRepo.RoleDepreciationExpense:     a.DepreciationExpense,
			redisRepo.RoleRetainedEarnings:        a.RetainedEarnings,
			redisRepo.RoleRounding:                a.Rounding,
		},
		Nominal: append([]string(nil), a.Nominal...),
	}
}

func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, appLogger zerolog.Logger) {
	ticker := time.NewTicker(limiterIdleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleAfter); n > 0 {
				appLogger.Debug().Int("removed", n).Msg("pruned idle rate limiters")
			}
		}
	}
}
