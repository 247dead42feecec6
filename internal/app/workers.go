package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/notification"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

// WorkerModule registers the NATS notification worker and the cron jobs.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn `optional:"true"`
	NotifSvc notification.Service
	StatsSvc stats.Service
	Sessions session.Backend
}

// pruner is implemented by session backends that hold expired entries in
// process memory.
type pruner interface {
	Prune() int
}

func RegisterWorkers(p WorkerParams) error {
	scheduler := cron.New()
	if err := registerJobs(scheduler, p.Cfg, p.Sessions, p.StatsSvc); err != nil {
		return err
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.NC != nil {
				var err error
				sub, err = startNotificationWorker(p.NC, p.Cfg.Notifications.SubjectPrefix, p.NotifSvc)
				if err != nil {
					return err
				}
			}
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub != nil {
				_ = sub.Unsubscribe()
			}
			select {
			case <-scheduler.Stop().Done():
			case <-ctx.Done():
				return ctx.Err()
			}
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
	return nil
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

func startNotificationWorker(nc *nats.Conn, prefix string, svc notification.Service) (*nats.Subscription, error) {
	subject := notification.ActivityWildcard(prefix)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		handleActivityMessage(context.Background(), svc, msg.Subject, msg.Data)
	})
	if err != nil {
		slog.Error("notification_worker: subscribe failed", "subject", subject, "err", err)
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	slog.Info("notification_worker: started", "subject", subject)
	return sub, nil
}

// handleActivityMessage never fails the subscription; bad events are logged
// and dropped.
func handleActivityMessage(ctx context.Context, svc notification.Service, subject string, data []byte) int {
	a, err := notification.Decode(data)
	if err != nil {
		slog.Warn("notification_worker: dropping event", "subject", subject, "err", err)
		return 0
	}
	sent, err := svc.Handle(ctx, a)
	switch {
	case errors.Is(err, notification.ErrNoTicket):
		slog.Debug("notification_worker: activity has no ticket", "activity_id", a.ID)
	case err != nil:
		slog.Warn("notification_worker: handle failed", "activity_id", a.ID, "type", a.Type, "err", err)
	case sent > 0:
		slog.Debug("notification_worker: sent", "activity_id", a.ID, "count", sent)
	}
	return sent
}

// ---------------------------------------------------------------------------
// cron jobs
// ---------------------------------------------------------------------------

func registerJobs(c *cron.Cron, cfg *config.Config, sessions session.Backend, statsSvc stats.Service) error {
	if p, ok := sessions.(pruner); ok {
		every := time.Duration(cfg.Session.PruneIntervalMinutes) * time.Minute
		if every <= 0 {
			every = 10 * time.Minute
		}
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() { pruneSessions(p) }); err != nil {
			return fmt.Errorf("schedule session prune: %w", err)
		}
	}
	if _, err := c.AddFunc("@daily", func() { logDailyStats(context.Background(), statsSvc) }); err != nil {
		return fmt.Errorf("schedule daily stats: %w", err)
	}
	return nil
}

func pruneSessions(p pruner) {
	if n := p.Prune(); n > 0 {
		slog.Debug("session_pruner: removed expired sessions", "count", n)
	}
}

// dailySummary returns the live counters and the volume of the day that just
// ended. The job fires right after midnight, so today's figures are empty.
func dailySummary(ctx context.Context, svc stats.Service) (domain.Stats, stats.VolumePoint, error) {
	st, err := svc.Stats(ctx)
	if err != nil {
		return domain.Stats{}, stats.VolumePoint{}, err
	}
	vol, err := svc.Volume(ctx, stats.Last7Days)
	if err != nil {
		return domain.Stats{}, stats.VolumePoint{}, err
	}
	// daily buckets, oldest first; the last one is today
	if len(vol) < 2 {
		return st, stats.VolumePoint{}, nil
	}
	return st, vol[len(vol)-2], nil
}

func logDailyStats(ctx context.Context, svc stats.Service) {
	st, prev, err := dailySummary(ctx, svc)
	if err != nil {
		slog.Warn("stats_reporter: load failed", "err", err)
		return
	}
	slog.Info("stats_reporter: daily summary",
		"total", st.Total,
		"open", st.OpenCount,
		"in_progress", st.InProgressCount,
		"resolved", st.ResolvedCount,
		"closed", st.ClosedCount,
		"high_priority", st.HighPriorityCount,
		"day", prev.Name,
		"created", prev.Created,
		"resolved_that_day", prev.Resolved,
	)
}
