package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	ordersmod "github.com/vendory/bizcore/modules/orders"
	recalcmod "github.com/vendory/bizcore/modules/recalc"
	"github.com/vendory/bizcore/pkg/clientip"
	"github.com/vendory/bizcore/pkg/config"
	"github.com/vendory/bizcore/pkg/httpserver"
	"github.com/vendory/bizcore/pkg/limits"
	"github.com/vendory/bizcore/pkg/logger"
	"github.com/vendory/bizcore/pkg/pg"
	"github.com/vendory/bizcore/pkg/ratelimit"
	"github.com/vendory/bizcore/pkg/recalc"
	"github.com/vendory/bizcore/pkg/redis"
	"github.com/vendory/bizcore/pkg/requestid"
	"github.com/vendory/bizcore/pkg/segment"
	"github.com/vendory/bizcore/pkg/sequence"
	"github.com/vendory/bizcore/pkg/stats"
	"github.com/vendory/bizcore/pkg/tenant"
)

type appConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Addr         string `env:"HTTP_ADDR" envDefault:":8080"`
	PlansPath    string `env:"PLANS_PATH" envDefault:"config/plans.yml"`
	RulesPath    string `env:"SEGMENT_RULES_PATH" envDefault:"config/segments.yml"`
	TenantHeader string `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	DomainSuffix string `env:"TENANT_DOMAIN_SUFFIX"`

	OrdersRateLimit  int           `env:"ORDERS_RATE_LIMIT" envDefault:"120"`
	OrdersRateWindow time.Duration `env:"ORDERS_RATE_WINDOW" envDefault:"1m"`
	RecalcRateLimit  int           `env:"RECALC_RATE_LIMIT" envDefault:"2"`
	RecalcRateWindow time.Duration `env:"RECALC_RATE_WINDOW" envDefault:"10m"`
}

func main() {
	var (
		cfg      appConfig
		pgCfg    pg.Config
		redisCfg redis.Config
	)
	config.MustLoad(&cfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "bizcore"),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	ctx := context.Background()

	if err := run(ctx, cfg, pgCfg, redisCfg, log); err != nil {
		log.ErrorContext(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, pgCfg pg.Config, redisCfg redis.Config, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// Storage layer.
	storage := ordersmod.NewPostgresStorage(pool)
	statsStore := stats.NewPostgresStore(pool)
	segmentStore := segment.NewPostgresStore(pool)
	provider := tenant.NewPostgresProvider(pool)

	// Plan catalog and usage counters.
	counters := limits.NewRegistry()
	counters.Register(limits.ResourceOrdersPerMonth, storage.CountOrdersThisMonth)
	counters.Register(limits.ResourceCustomers, storage.CountCustomers)

	limitsSvc, err := limits.NewLimitsService(ctx, limits.NewFileSource(cfg.PlansPath), counters, planFromTenant)
	if err != nil {
		return err
	}

	// Segmentation rules are loaded once at startup; every tenant shares
	// the same catalog for now.
	rawRules, err := os.ReadFile(cfg.RulesPath)
	if err != nil {
		return err
	}
	rules, err := segment.ParseRules(rawRules)
	if err != nil {
		return err
	}
	ruleResolver := func(ctx context.Context, tenantID uuid.UUID) (*segment.Ruleset, error) {
		return rules, nil
	}

	// Derived-state services.
	allocator := sequence.NewAllocator(sequence.NewPostgresStore(pool))
	agg := stats.NewAggregator(statsStore, statsStore, stats.WithLogger(log))
	orch := recalc.NewOrchestrator(agg, statsStore, segmentStore, ruleResolver, limitsSvc, recalc.WithLogger(log))

	ordersSvc := ordersmod.NewService(storage, limitsSvc, allocator, agg, ordersmod.WithLogger(log))
	recalcSvc := recalcmod.NewService(orch, segmentStore, recalcmod.WithLogger(log))

	// Rate limit counters live in Redis so all instances share windows.
	rlStore := ratelimit.NewRedisStore(redisClient)
	ordersLimiter, err := ratelimit.NewFixedWindow(rlStore, cfg.OrdersRateLimit, cfg.OrdersRateWindow)
	if err != nil {
		return err
	}
	recalcLimiter, err := ratelimit.NewFixedWindow(rlStore, cfg.RecalcRateLimit, cfg.RecalcRateWindow)
	if err != nil {
		return err
	}

	resolver := tenant.NewChainResolver(
		tenant.NewHeaderResolver(cfg.TenantHeader),
		tenant.NewSubdomainResolver(cfg.DomainSuffix),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver, provider))

		r.Mount("/orders", ordersmod.Router(ordersmod.RouterOptions{
			Service: ordersSvc,
			Limiter: ordersLimiter,
		}))
		r.Mount("/recalculations", recalcmod.Router(recalcmod.RouterOptions{
			Service: recalcSvc,
			Limiter: recalcLimiter,
		}))
	})

	srv := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
		httpserver.WithReadTimeout(10*time.Second),
		httpserver.WithWriteTimeout(30*time.Second),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("server started", slog.String("addr", cfg.Addr))
		}),
	)

	return srv.Run(ctx, r)
}

// planFromTenant resolves the plan of the tenant already loaded into the
// request context, avoiding a second lookup per limit check.
func planFromTenant(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if t, ok := tenant.FromContext(ctx); ok && t.ID == tenantID {
		return t.PlanID, nil
	}
	return limits.PlanIDContextResolver(ctx, tenantID)
}
