package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Login checks the credentials and opens a session, returning the user
	// and the new session id.
	Login(ctx context.Context, req LoginRequest) (domain.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	// Authenticate resolves a session id to its user, reloading the user so
	// role changes apply to live sessions.
	Authenticate(ctx context.Context, sessionID string) (domain.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	store    store.Store
	sessions *session.Manager
}

func New(s store.Store, sessions *session.Manager) Service {
	return &authService{store: s, sessions: sessions}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (domain.User, string, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	u, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrUnknownUsername
		}
		return domain.User{}, "", fmt.Errorf("load user: %w", err)
	}

	// Passwords are stored as given; comparison is plain equality.
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(req.Password)) != 1 {
		return domain.User{}, "", ErrWrongPassword
	}

	sid, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create session: %w", err)
	}

	slog.Info("auth: login", "user_id", u.ID, "role", u.Role)
	return u, sid, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, sessionID string) (domain.User, error) {
	if sessionID == "" {
		return domain.User{}, ErrNotAuthenticated
	}

	userID, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return domain.User{}, ErrNotAuthenticated
		}
		return domain.User{}, fmt.Errorf("lookup session: %w", err)
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.sessions.Destroy(ctx, sessionID)
			return domain.User{}, ErrNotAuthenticated
		}
		return domain.User{}, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}
