package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/database"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
	"github.com/Alijeyrad/helpdesk_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/helpdesk_backend/pkg/redis"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
	"github.com/Alijeyrad/helpdesk_backend/pkg/util/codes"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideStore),
	fx.Provide(ProvideSessionBackend),
	fx.Provide(ProvideSessionManager),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideEmailConfig),
	fx.Provide(ProvideCodesGenerator),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (store.Store, error) {
	var s store.Store
	switch cfg.Store.Backend {
	case "sql":
		drv, err := database.NewDriver(cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := store.Migrate(context.Background(), drv); err != nil {
				drv.Close()
				return nil, err
			}
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				slog.Debug("closing main database connection")
				return drv.Close()
			},
		})
		s = store.NewSQL(drv, nil)
	default:
		s = store.NewMemory(nil)
	}

	if cfg.Store.Seed {
		err := store.Seed(context.Background(), s)
		switch {
		case errors.Is(err, store.ErrAlreadySeeded):
			slog.Debug("store already seeded")
		case err != nil:
			return nil, err
		default:
			slog.Info("store seeded with demo data", "backend", cfg.Store.Backend)
		}
	}
	return s, nil
}

// ProvideRedis is only reached when sessions live in Redis.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSessionBackend(lc fx.Lifecycle, cfg *config.Config) (session.Backend, error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemory(), nil
	}
	rdb, err := ProvideRedis(lc, cfg)
	if err != nil {
		return nil, err
	}
	return session.NewRedis(rdb), nil
}

func ProvideSessionManager(backend session.Backend, cfg *config.Config) *session.Manager {
	return session.NewManager(backend, session.FromCentralConfig(cfg.Session))
}

func ProvideAuthorization(cfg *config.Config) (authorize.IAuthorization, error) {
	return authorize.New(context.Background(), authorize.FromCentralConfig(cfg.Authorization), slog.Default())
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideEmailConfig(cfg *config.Config) email.Config {
	return email.FromCentralConfig(cfg.Email)
}

func ProvideCodesGenerator(cfg *config.Config) *codes.Generator {
	return codes.NewGenerator(codes.FromCentralConfig(cfg.Codes))
}

// ProvideNatsClient returns nil when notifications are disabled.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Notifications.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Notifications.NatsURL, nats.Name(cfg.Observability.ServiceName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
