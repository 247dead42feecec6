package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemory(), Config{})

	id, err := m.Create(ctx, 42)
	require.NoError(t, err)

	userID, err := m.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	require.NoError(t, m.Destroy(ctx, id))
	_, err = m.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, m.Destroy(ctx, ""))
}

func TestLookupRejectsGarbage(t *testing.T) {
	m := NewManager(NewMemory(), DefaultConfig())
	for _, id := range []string{"", "not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		_, err := m.Lookup(context.Background(), id)
		assert.ErrorIs(t, err, ErrNoSession, id)
	}
}

func TestMemoryExpiryAndPrune(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mem := NewMemory()
	mem.now = func() time.Time { return now }

	m := NewManager(mem, Config{TTL: time.Hour})
	id, err := m.Create(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, mem.Set("session:forever", []byte("1"), 0))

	now = now.Add(59 * time.Minute)
	_, err = m.Lookup(context.Background(), id)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Lookup(context.Background(), id)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, 2, mem.Len(), "expired entries linger until pruned")
	assert.Equal(t, 1, mem.Prune())
	assert.Equal(t, 1, mem.Len())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(NewMemory(), DefaultConfig())
	_, err := m.Create(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromCentralConfig(t *testing.T) {
	cfg := FromCentralConfig(config.SessionConfig{TTLMinutes: 30, CookieSecure: true})
	assert.Equal(t, 30*time.Minute, cfg.TTL)
	assert.Equal(t, "helpdesk.sid", cfg.CookieName)
	assert.True(t, cfg.CookieSecure)
}
