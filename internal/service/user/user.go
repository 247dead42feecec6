package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
	"github.com/Alijeyrad/helpdesk_backend/pkg/util/codes"
)

// maxUsernameAttempts bounds the numeric suffixes tried when deriving an
// invite username.
const maxUsernameAttempts = 100

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      authorize.Role `json:"role"`
	AvatarURL *string        `json:"avatarUrl"`
}

type InviteRequest struct {
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  authorize.Role `json:"role"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Agents(ctx context.Context) ([]domain.User, error)
	// Invite creates a team member with a generated password and emails the
	// credentials. A failed email is logged; the user is still created.
	Invite(ctx context.Context, req InviteRequest) (domain.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type userService struct {
	store  store.Store
	mailer email.Sender
	codes  *codes.Generator
	mail   email.Config
}

func New(s store.Store, mailer email.Sender, gen *codes.Generator, mailCfg email.Config) Service {
	return &userService{store: s, mailer: mailer, codes: gen, mail: mailCfg}
}

func (s *userService) Create(ctx context.Context, req CreateRequest) (domain.User, error) {
	if err := validateCreate(&req); err != nil {
		return domain.User{}, err
	}

	u, err := s.store.CreateUser(ctx, domain.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return domain.User{}, s.conflict(ctx, req.Username, err)
	}
	return u, nil
}

func validateCreate(req *CreateRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	case req.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	case req.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	case !validEmail(req.Email):
		return fmt.Errorf("%w: invalid email %q", ErrInvalidUser, req.Email)
	}
	if req.Role == "" {
		req.Role = authorize.RoleCustomer
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUser, req.Role)
	}
	return nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Agents(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.ListUsersByRole(ctx, authorize.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return users, nil
}

func (s *userService) Invite(ctx context.Context, req InviteRequest) (domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = authorize.RoleAgent
	}
	switch {
	case len([]rune(req.Name)) < 2:
		return domain.User{}, fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInvite)
	case !validEmail(req.Email):
		return domain.User{}, fmt.Errorf("%w: invalid email %q", ErrInvalidInvite, req.Email)
	case !req.Role.Valid():
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInvite, req.Role)
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.User{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}

	username, err := s.freeUsername(ctx, usernameFromEmail(req.Email))
	if err != nil {
		return domain.User{}, err
	}
	password, err := s.codes.TempPassword()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, domain.NewUser{
		Username: username,
		Password: password,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		return domain.User{}, s.conflict(ctx, username, err)
	}

	msg := email.BuildInviteEmail(email.InviteEmailData{
		Name:         u.Name,
		Email:        u.Email,
		Username:     u.Username,
		TempPassword: password,
		Role:         string(u.Role),
		AppName:      s.mail.AppName,
		BaseURL:      s.mail.BaseURL,
	})
	if err := s.mailer.Send(ctx, msg); err != nil {
		if email.IsDisabled(err) {
			slog.Info("user: invite email skipped, email disabled", "user_id", u.ID)
		} else {
			slog.Warn("user: invite email failed", "user_id", u.ID, "err", err)
		}
	}

	slog.Info("user: invited", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// freeUsername returns base, or base2, base3... for the first unused name.
func (s *userService) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i < maxUsernameAttempts+2; i++ {
		_, err := s.store.GetUserByUsername(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", fmt.Errorf("%w: no free username for %q", ErrUsernameExists, base)
}

// conflict translates a store conflict into the matching sentinel.
func (s *userService) conflict(ctx context.Context, username string, err error) error {
	if !errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("create user: %w", err)
	}
	if _, lookupErr := s.store.GetUserByUsername(ctx, username); lookupErr == nil {
		return ErrUsernameExists
	}
	return ErrEmailAlreadyExists
}

// usernameFromEmail keeps the lowercased local part, restricted to letters,
// digits, dots, dashes and underscores.
func usernameFromEmail(addr string) string {
	local, _, _ := strings.Cut(strings.ToLower(addr), "@")
	var b strings.Builder
	for _, r := range local {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "member"
	}
	return b.String()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
