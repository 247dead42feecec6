package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/notification"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

type handlerFunc func(ctx context.Context, a domain.Activity) (int, error)

func (f handlerFunc) Handle(ctx context.Context, a domain.Activity) (int, error) { return f(ctx, a) }

func TestHandleActivityMessage(t *testing.T) {
	ticketID := 2
	event, err := json.Marshal(domain.Activity{ID: 9, Type: domain.ActivityCommented, TicketID: &ticketID, UserID: 2})
	require.NoError(t, err)

	t.Run("delivers decoded activity", func(t *testing.T) {
		var got domain.Activity
		svc := handlerFunc(func(_ context.Context, a domain.Activity) (int, error) {
			got = a
			return 1, nil
		})
		sent := handleActivityMessage(context.Background(), svc, "helpdesk.activity.commented.2", event)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 9, got.ID)
		assert.Equal(t, domain.ActivityCommented, got.Type)
	})

	t.Run("drops malformed payload", func(t *testing.T) {
		called := false
		svc := handlerFunc(func(context.Context, domain.Activity) (int, error) {
			called = true
			return 0, nil
		})
		assert.Zero(t, handleActivityMessage(context.Background(), svc, "x", []byte(`{"type":"deleted"}`)))
		assert.Zero(t, handleActivityMessage(context.Background(), svc, "x", []byte(`not json`)))
		assert.False(t, called)
	})

	t.Run("swallows handler errors", func(t *testing.T) {
		svc := handlerFunc(func(context.Context, domain.Activity) (int, error) {
			return 0, errors.New("smtp down")
		})
		assert.Zero(t, handleActivityMessage(context.Background(), svc, "x", event))

		svc = func(context.Context, domain.Activity) (int, error) { return 0, notification.ErrNoTicket }
		assert.Zero(t, handleActivityMessage(context.Background(), svc, "x", event))
	})
}

type redisLike struct{ session.Backend }

func TestRegisterJobs(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{PruneIntervalMinutes: 5}}
	statsSvc := stats.New(store.NewMemory(nil), nil)

	c := cron.New()
	require.NoError(t, registerJobs(c, cfg, session.NewMemory(), statsSvc))
	assert.Len(t, c.Entries(), 2)

	// Backends without Prune only get the stats job.
	c = cron.New()
	require.NoError(t, registerJobs(c, cfg, redisLike{}, statsSvc))
	assert.Len(t, c.Entries(), 1)
}

func TestPruneSessions(t *testing.T) {
	mem := session.NewMemory()
	require.NoError(t, mem.Set("stale", []byte("x"), time.Millisecond))
	require.NoError(t, mem.Set("live", []byte("y"), time.Hour))
	time.Sleep(5 * time.Millisecond)

	pruneSessions(mem)
	assert.Equal(t, 1, mem.Len())
}

func TestDailySummaryReportsPreviousDay(t *testing.T) {
	ctx := context.Background()
	justAfterMidnight := time.Date(2024, 5, 16, 0, 0, 30, 0, time.UTC)
	at := time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)
	s := store.NewMemory(func() time.Time { return at })

	tk, err := s.CreateTicket(ctx, domain.NewTicket{Subject: "VPN down", CreatedByID: 3})
	require.NoError(t, err)
	_, err = s.CreateActivity(ctx, domain.NewActivity{Type: domain.ActivityResolved, TicketID: &tk.ID, UserID: 1})
	require.NoError(t, err)

	st, prev, err := dailySummary(ctx, stats.New(s, func() time.Time { return justAfterMidnight }))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, "Wed", prev.Name)
	assert.Equal(t, 1, prev.Created)
	assert.Equal(t, 1, prev.Resolved)
}

func TestLogDailyStatsToleratesEmptyStore(t *testing.T) {
	logDailyStats(context.Background(), stats.New(store.NewMemory(nil), nil))
}

func TestProvideStoreMemorySeeded(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{Store: config.StoreConfig{Backend: "memory", Seed: true}}

	s, err := ProvideStore(lc, cfg)
	require.NoError(t, err)

	admin, err := s.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, authorize.RoleAdmin, admin.Role)
}

func TestProvideNatsClientDisabled(t *testing.T) {
	nc, err := ProvideNatsClient(fxtest.NewLifecycle(t), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, nc)
}
