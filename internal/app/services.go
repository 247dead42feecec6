package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/activity"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/article"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/auth"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/notification"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/ticket"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/user"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
	"github.com/Alijeyrad/helpdesk_backend/pkg/observability"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
	"github.com/Alijeyrad/helpdesk_backend/pkg/util/codes"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideActivityRecorder,
		ProvideAuthService,
		ProvideUserService,
		ProvideTicketService,
		ProvideStatsService,
		ProvideArticleService,
		ProvideNotificationService,
	),
)

// ProvideActivityRecorder fans recorded activities out to NATS when a
// connection exists. The otel provider is taken so the activity counter is
// registered against the configured meter.
func ProvideActivityRecorder(nc *nats.Conn, cfg *config.Config, _ *observability.Provider) (*activity.Recorder, error) {
	var next activity.Publisher
	if nc != nil {
		next = notification.NewPublisher(nc, cfg.Notifications.SubjectPrefix)
	}
	metered, err := activity.NewMetered(next)
	if err != nil {
		return nil, err
	}
	return activity.New(metered), nil
}

func ProvideAuthService(s store.Store, sessions *session.Manager) auth.Service {
	return auth.New(s, sessions)
}

func ProvideUserService(s store.Store, mailer *email.Client, gen *codes.Generator, mailCfg email.Config) user.Service {
	return user.New(s, mailer, gen, mailCfg)
}

func ProvideTicketService(s store.Store, authz authorize.IAuthorization, rec *activity.Recorder) ticket.Service {
	return ticket.New(s, authz, rec)
}

func ProvideStatsService(s store.Store) stats.Service {
	return stats.New(s, nil)
}

func ProvideArticleService(s store.Store, authz authorize.IAuthorization) article.Service {
	return article.New(s, authz)
}

func ProvideNotificationService(s store.Store, mailer *email.Client, mailCfg email.Config) notification.Service {
	return notification.New(s, mailer, mailCfg)
}
