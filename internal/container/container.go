package container

import (
	"context"
	"fmt"
	"time"

	"github.com/cactripplanner/shortlinks/internal/analytics"
	analyticsstore "github.com/cactripplanner/shortlinks/internal/analytics/store"
	"github.com/cactripplanner/shortlinks/internal/config"
	"github.com/cactripplanner/shortlinks/internal/content"
	"github.com/cactripplanner/shortlinks/internal/handlers"
	"github.com/cactripplanner/shortlinks/internal/health"
	"github.com/cactripplanner/shortlinks/internal/messaging"
	"github.com/cactripplanner/shortlinks/internal/metrics"
	"github.com/cactripplanner/shortlinks/internal/middleware"
	"github.com/cactripplanner/shortlinks/internal/ratelimit"
	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/cactripplanner/shortlinks/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const (
	consumerGroupName = "shortlinks-analytics"
	missTTL           = 30 * time.Second
	rateLimitWindow   = 24 * time.Hour
)

// Redis owns the shared Redis client.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// Postgres owns the shared connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// ConfigPackage loads the secrets file.
func ConfigPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*config.Secrets, error) {
		opts := do.MustInvoke[*Options](i)

		secrets, _, err := config.LoadSecrets(opts.SecretsFile)
		if err != nil {
			return nil, err
		}

		return secrets, nil
	})
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)
		secrets := do.MustInvoke[*config.Secrets](i)

		return newLogger(logFormat(opts.LogFormat, secrets.Production), opts.LogFile)
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		secrets := do.MustInvoke[*config.Secrets](i)

		dsn := opts.DatabaseURL
		if dsn == "" {
			dsn = secrets.Database.URL()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the shortlink repository for the configured backend.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		var repo shortener.Repository

		switch opts.Storage {
		case StoragePostgres:
			repo = store.NewPostgresStore(do.MustInvoke[*Postgres](i).Pool)
		case StorageRedis:
			repo = store.NewRedisStore(do.MustInvoke[*Redis](i).Client)
		default:
			repo = store.NewMemoryStore()
		}

		if opts.Cache {
			ttl := time.Duration(opts.CacheTTL) * time.Second
			repo = store.NewRedisCacheRepository(repo, do.MustInvoke[*Redis](i).Client, ttl, missTTL)
		}

		return repo, nil
	})
}

// ContentPackage provides the CMS read model. Without Postgres an empty
// in-memory store is used, so the content API answers 404.
func ContentPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (content.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.needsPostgres() {
			return store.NewContentPostgresStore(do.MustInvoke[*Postgres](i).Pool), nil
		}

		return store.NewContentMemoryStore(), nil
	})
}

// KeyPackage provides the key generator, the strategies and the resolver.
func KeyPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Generator, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		generator, err := shortener.NewGenerator(keyConfig(opts))
		if err != nil {
			return nil, err
		}

		generator.OnCollision(func(attempt int) {
			m.KeyCollision(attempt)
			logger.Warn("generated key already taken", zap.Int("attempt", attempt))
		})

		return generator, nil
	})

	do.Provide(i, func(i *do.Injector) (map[handlers.Strategy]shortener.Strategy, error) {
		repo := do.MustInvoke[shortener.Repository](i)
		generator := do.MustInvoke[*shortener.Generator](i)

		return map[handlers.Strategy]shortener.Strategy{
			handlers.StrategyToken: shortener.NewTokenStrategy(repo, generator),
			handlers.StrategyHash:  shortener.NewHashStrategy(repo, generator),
		}, nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewResolver(do.MustInvoke[shortener.Repository](i), keyConfig(opts)), nil
	})
}

func keyConfig(opts *Options) shortener.KeyConfig {
	return shortener.KeyConfig{
		Length:      opts.KeyLength,
		Alphabet:    opts.KeyAlphabet,
		MaxAttempts: opts.KeyMaxAttempts,
	}.WithDefaults()
}

// RateLimitPackage provides the policy limiter and the scheduler that prunes
// in-memory counters.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.RateLimitMemoryStore, error) {
		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var counters ratelimit.Store
		if opts.RateLimitStore == StorageRedis {
			counters = store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).Client)
		} else {
			counters = do.MustInvoke[*store.RateLimitMemoryStore](i)
		}

		return ratelimit.NewPolicyLimiter(counters, ratelimit.DefaultPolicy()), nil
	})

	do.Provide(i, func(i *do.Injector) (*Scheduler, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		scheduler := newScheduler(logger)

		if opts.RateLimitStore != StorageMemory {
			return scheduler, nil
		}

		counters := do.MustInvoke[*store.RateLimitMemoryStore](i)

		err := scheduler.Add("prune-rate-limits", opts.PruneSchedule, func() {
			if removed := counters.Prune(rateLimitWindow); removed > 0 {
				logger.Info("pruned rate limit counters",
					zap.Int("removed", removed),
					zap.Int("remaining", counters.Keys()),
				)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("schedule rate limit pruning: %w", err)
		}

		return scheduler, nil
	})
}

func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// PublisherGroupPackage provides typed publish functions. With events
// disabled they discard everything and no publisher is created.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := messaging.NewRedisPublisher(client, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.ShortLinkCreatedEvent], error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.DiscardPublish[analytics.ShortLinkCreatedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ShortLinkCreatedEvent](
			group.Publisher(), analytics.TopicShortLinkCreated,
		), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.ShortLinkResolvedEvent], error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.DiscardPublish[analytics.ShortLinkResolvedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ShortLinkResolvedEvent](
			group.Publisher(), analytics.TopicShortLinkResolved,
		), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading Redis Streams.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*Redis](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := messaging.NewRedisSubscriber(client, consumerGroupName, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		return analytics.NewConsumerGroup(subscriber, analyticsstore.NewNoop(logger), logger), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		m := do.MustInvoke[*metrics.Metrics](i)

		router := chi.NewMux()
		router.Use(m.Middleware)
		router.Handle("/metrics", m.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Trip Planner Shortlinks", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(),
				logger,
			),
		)

		shortLinks := handlers.NewShortLinkHandler(
			do.MustInvoke[map[handlers.Strategy]shortener.Strategy](i),
			do.MustInvoke[*shortener.Resolver](i),
			opts.PublicBaseURL(),
			do.MustInvoke[messaging.Publish[analytics.ShortLinkCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.ShortLinkResolvedEvent]](i),
			do.MustInvoke[*metrics.Metrics](i),
			logger,
		)

		contentHandler := handlers.NewContentHandler(
			do.MustInvoke[content.Repository](i),
			handlers.ContentOptions{
				BaseURL:            opts.PublicBaseURL(),
				MediaURL:           opts.MediaURL,
				FacebookAppID:      opts.FacebookAppID,
				HomepageResultsMax: opts.HomepageResultsLimit,
			},
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts)))
		handlers.RegisterContentRoutes(api, contentHandler)
		handlers.RegisterRoutes(api, shortLinks)

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := map[string]health.Checker{}

	if opts.needsRedis() {
		checkers["redis"] = health.RedisChecker(do.MustInvoke[*Redis](i).Client)
	}

	if opts.needsPostgres() {
		checkers["postgres"] = health.PostgresChecker(do.MustInvoke[*Postgres](i).Pool)
	}

	return checkers
}
