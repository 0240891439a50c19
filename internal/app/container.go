package app

import (
	"context"
	"fmt"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/bot"
	"github.com/kapu/carfinder-bot-go/internal/catalog"
	"github.com/kapu/carfinder-bot-go/internal/command"
	"github.com/kapu/carfinder-bot-go/internal/config"
	"github.com/kapu/carfinder-bot-go/internal/constants"
	"github.com/kapu/carfinder-bot-go/internal/dialogue"
	"github.com/kapu/carfinder-bot-go/internal/health"
	"github.com/kapu/carfinder-bot-go/internal/iris"
	"github.com/kapu/carfinder-bot-go/internal/service/cache"
	"github.com/kapu/carfinder-bot-go/internal/service/database"
	"github.com/kapu/carfinder-bot-go/internal/service/wikimedia"
	"github.com/kapu/carfinder-bot-go/internal/session"
	"github.com/kapu/carfinder-bot-go/internal/telegram"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing runtime components like Bot.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog *catalog.Catalog

	botDeps *bot.Dependencies
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Build loads the catalog, connects optional infrastructure and wires the
// dialogue, command and transport layers. Everything that can fail at
// startup fails here, so bot.NewBot stays focused on orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Catalog
	records, err := loadRecords(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	vehicles, err := catalog.Build(records, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	stats := vehicles.Stats()
	logger.Info("Vehicle catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("brands", stats.Brands),
		zap.Int("models", stats.Models),
		zap.Int("trims", stats.Trims),
		zap.Int("skipped", stats.Skipped),
	)

	// Optional image URL cache
	var (
		cacheSvc   *cache.CacheService
		imageCache wikimedia.ImageCache
	)
	if cfg.Redis.Enabled {
		svc, cacheErr := cache.NewCacheService(ctx, cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, image URLs will not be cached", zap.Error(cacheErr))
		} else {
			cacheSvc = svc
			imageCache = svc
			closers = append(closers, func() {
				_ = svc.Close()
			})
		}
	}

	resolver := wikimedia.NewResolver(wikimedia.Config{
		APIURL:    cfg.Wikimedia.APIURL,
		FileURL:   cfg.Wikimedia.FileURL,
		UserAgent: cfg.Wikimedia.UserAgent,
		Timeout:   cfg.Wikimedia.Timeout,
	}, nil, imageCache, logger)

	flow := dialogue.NewFlow(vehicles, resolver, dialogue.FlowConfig{
		PageSize: cfg.Dialogue.PageSize,
		Timeout:  cfg.Dialogue.Timeout,
	}, logger)

	// Commands
	hub := session.NewHub(logger)
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Prefix)
	formatter := adapter.NewResponseFormatter(cfg.Bot.Prefix, cfg.Dialogue.Timeout)

	registry := command.NewDefaultRegistry(&command.Dependencies{
		Flow:      flow,
		Sessions:  hub,
		Formatter: formatter,
		Logger:    logger,
	})
	logger.Info("Commands registered", zap.Strings("commands", registry.Names()))

	// Transport
	transport, err := newTransport(cfg, formatter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s transport: %w", cfg.Transport, err)
	}

	healthSrv := health.NewServer(cfg.Health.Addr, logger, healthChecks(vehicles, transport, cacheSvc, resolver)...)

	deps := &bot.Dependencies{
		Logger:         logger,
		Transport:      transport,
		Sessions:       hub,
		MessageAdapter: messageAdapter,
		Formatter:      formatter,
		Dispatcher:     command.NewSequentialDispatcher(registry, nil, logger),
		Health:         healthSrv,
		Closers:        closers,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Catalog: vehicles,
		botDeps: deps,
	}, nil
}

func loadRecords(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]catalog.Record, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pg, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		return catalog.QueryRecords(ctx, pg.DB(), cfg.Catalog.Table)

	case config.CatalogSourceSQLite:
		lite, err := database.NewSQLiteService(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		defer lite.Close()
		return catalog.QueryRecords(ctx, lite.DB(), cfg.Catalog.Table)

	default:
		return catalog.LoadFile(cfg.Catalog.Path)
	}
}

func newTransport(cfg *config.Config, formatter *adapter.ResponseFormatter, logger *zap.Logger) (bot.Transport, error) {
	if cfg.Transport == config.TransportIris {
		client := iris.NewClient(cfg.Iris.BaseURL, logger)
		events := iris.NewEventStream(cfg.Iris.WSURL,
			constants.WebSocketConfig.MaxReconnectAttempts,
			constants.WebSocketConfig.ReconnectDelay,
			logger)
		return iris.NewTransport(client, events, formatter, logger), nil
	}
	return telegram.NewTransport(cfg.Telegram, formatter, logger)
}

func healthChecks(vehicles *catalog.Catalog, transport bot.Transport, cacheSvc *cache.CacheService, resolver *wikimedia.Resolver) []health.Check {
	checks := []health.Check{
		{
			Name: "catalog",
			Run: func(context.Context) (any, error) {
				return vehicles.Stats(), nil
			},
		},
		{
			Name: "transport",
			Run: func(context.Context) (any, error) {
				state := transport.Status()
				detail := map[string]string{"name": transport.Name(), "state": state}
				if state == "DISCONNECTED" || state == "FAILED" {
					return detail, fmt.Errorf("%s transport is %s", transport.Name(), state)
				}
				return detail, nil
			},
		},
		{
			// An open circuit degrades image lookups but not browsing.
			Name: "wikimedia",
			Run: func(context.Context) (any, error) {
				status := resolver.Status()
				return map[string]any{"state": status.State.String(), "failures": status.FailureCount}, nil
			},
		},
	}

	if pinger, ok := transport.(interface{ Ping(context.Context) bool }); ok {
		checks = append(checks, health.Check{
			Name: "transport_api",
			Run: func(ctx context.Context) (any, error) {
				if !pinger.Ping(ctx) {
					return nil, fmt.Errorf("%s API not reachable", transport.Name())
				}
				return nil, nil
			},
		})
	}

	if cacheSvc != nil {
		checks = append(checks, health.Check{
			Name: "redis",
			Run: func(ctx context.Context) (any, error) {
				if !cacheSvc.IsConnected(ctx) {
					return nil, fmt.Errorf("redis not reachable")
				}
				return nil, nil
			},
		})
	}
	return checks
}
