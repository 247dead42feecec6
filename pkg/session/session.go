// Package session keeps server-side login sessions. A session is a random id
// mapped to a user id in a Backend with a TTL; the id travels in an HttpOnly
// cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

var ErrNoSession = errors.New("session not found or expired")

const keyPrefix = "session:"

// Backend is the subset of fiber.Storage sessions need. Get returns nil, nil
// for a missing or expired key.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

type Config struct {
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
}

func DefaultConfig() Config {
	return Config{
		CookieName: "helpdesk.sid",
		TTL:        24 * time.Hour,
	}
}

func FromCentralConfig(c config.SessionConfig) Config {
	cfg := DefaultConfig()
	if c.CookieName != "" {
		cfg.CookieName = c.CookieName
	}
	if c.TTLMinutes > 0 {
		cfg.TTL = time.Duration(c.TTLMinutes) * time.Minute
	}
	cfg.CookieSecure = c.CookieSecure
	return cfg
}

type Manager struct {
	backend Backend
	cfg     Config
}

func NewManager(backend Backend, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultConfig().CookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{backend: backend, cfg: cfg}
}

func (m *Manager) Config() Config { return m.cfg }

func key(id string) string { return keyPrefix + id }

// Create starts a session for userID and returns its id.
func (m *Manager) Create(ctx context.Context, userID int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := m.backend.Set(key(id), []byte(strconv.Itoa(userID)), m.cfg.TTL); err != nil {
		return "", fmt.Errorf("session: store: %w", err)
	}
	return id, nil
}

// Lookup resolves a session id to its user id.
func (m *Manager) Lookup(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrNoSession
	}

	raw, err := m.backend.Get(key(id))
	if err != nil {
		return 0, fmt.Errorf("session: load: %w", err)
	}
	if len(raw) == 0 {
		return 0, ErrNoSession
	}

	userID, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("session: corrupt value for %s: %w", id, err)
	}
	return userID, nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if err := m.backend.Delete(key(id)); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
