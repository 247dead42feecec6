package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/activity"
	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/router"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/article"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/auth"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/ticket"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/user"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/email"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
	"github.com/Alijeyrad/helpdesk_backend/pkg/util/codes"
)

type testServer struct {
	app        *fiber.App
	cookieName string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemory(nil)
	require.NoError(t, store.Seed(ctx, s))

	authz, err := authorize.New(ctx, authorize.Config{}, nil)
	require.NoError(t, err)

	mailer, err := email.New(email.Config{})
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemory(), session.DefaultConfig())
	cfg := &config.Config{Knowledge: config.KnowledgeConfig{Enabled: true}}

	r := router.NewRouter(router.Params{
		Cfg:        cfg,
		Auth:       authz,
		Sessions:   sessions,
		AuthSvc:    auth.New(s, sessions),
		UserSvc:    user.New(s, mailer, codes.NewGenerator(codes.DefaultConfig()), email.Config{}),
		TicketSvc:  ticket.New(s, authz, activity.New(nil)),
		StatsSvc:   stats.New(s, nil),
		ArticleSvc: article.New(s, authz),
	})

	return &testServer{app: NewApp(cfg, r, nil), cookieName: sessions.Config().CookieName}
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookie *nethttp.Cookie) (*nethttp.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (ts *testServer) login(t *testing.T, username, password string) *nethttp.Cookie {
	t.Helper()
	resp, _ := ts.do(t, nethttp.MethodPost, "/api/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == ts.cookieName {
			return c
		}
	}
	t.Fatalf("login for %s set no session cookie", username)
	return nil
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("sets cookie and returns public user", func(t *testing.T) {
		cookie := ts.login(t, "agent", "agent123")
		assert.True(t, cookie.HttpOnly)

		resp, body := ts.do(t, nethttp.MethodGet, "/api/auth/session", "", cookie)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		u := decode[map[string]any](t, body)
		assert.Equal(t, "agent", u["username"])
		assert.NotContains(t, u, "password")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := ts.do(t, nethttp.MethodPost, "/api/auth/login", `{"username":"agent","password":"nope"}`, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Incorrect password.", decode[map[string]string](t, body)["message"])
	})

	t.Run("logout ends session", func(t *testing.T) {
		cookie := ts.login(t, "sarah", "customer123")
		resp, _ := ts.do(t, nethttp.MethodPost, "/api/auth/logout", "", cookie)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = ts.do(t, nethttp.MethodGet, "/api/tickets", "", cookie)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSessionRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/tickets", "/api/stats", "/api/activities", "/api/users/agents"} {
		resp, body := ts.do(t, nethttp.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Unauthorized", decode[map[string]string](t, body)["message"], path)
	}
}

func TestTicketFlow(t *testing.T) {
	ts := newTestServer(t)
	sarah := ts.login(t, "sarah", "customer123")

	resp, body := ts.do(t, nethttp.MethodPost, "/api/tickets",
		`{"subject":"Printer on fire","description":"Smoke everywhere","category":"Hardware","priority":"high"}`, sarah)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	created := decode[map[string]any](t, body)
	assert.Equal(t, "Printer on fire", created["subject"])
	assert.Equal(t, "open", created["status"])

	resp, body = ts.do(t, nethttp.MethodGet, "/api/tickets?page=1&limit=2", "", sarah)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := decode[struct {
		Tickets    []map[string]any `json:"tickets"`
		Pagination map[string]any   `json:"pagination"`
	}](t, body)
	assert.Len(t, page.Tickets, 2)
	assert.EqualValues(t, 5, page.Pagination["total"])

	t.Run("customer cannot update another user's ticket", func(t *testing.T) {
		resp, body := ts.do(t, nethttp.MethodPatch, "/api/tickets/2", `{"status":"closed"}`, sarah)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Forbidden", decode[map[string]string](t, body)["message"])
	})

	t.Run("agent can", func(t *testing.T) {
		agent := ts.login(t, "agent", "agent123")
		resp, body := ts.do(t, nethttp.MethodPatch, "/api/tickets/2", `{"status":"resolved"}`, agent)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
		assert.Equal(t, "resolved", decode[map[string]any](t, body)["status"])
	})

	t.Run("bad id and missing ticket", func(t *testing.T) {
		resp, _ := ts.do(t, nethttp.MethodGet, "/api/tickets/abc", "", sarah)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		resp, body := ts.do(t, nethttp.MethodGet, "/api/tickets/999", "", sarah)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Ticket not found", decode[map[string]string](t, body)["message"])
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		resp, _ := ts.do(t, nethttp.MethodPost, "/api/tickets/1/comments", `{"content":""}`, sarah)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestResolveCountsTowardResolvedToday(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin123")

	resolvedToday := func() int {
		resp, body := ts.do(t, nethttp.MethodGet, "/api/stats", "", admin)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
		return decode[struct {
			ResolvedToday int `json:"resolvedToday"`
		}](t, body).ResolvedToday
	}
	before := resolvedToday()

	resp, body := ts.do(t, nethttp.MethodGet, "/api/tickets/2", "", admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "open", decode[map[string]any](t, body)["status"])

	resp, body = ts.do(t, nethttp.MethodPatch, "/api/tickets/2", `{"status":"resolved"}`, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	resp, body = ts.do(t, nethttp.MethodGet, "/api/tickets/2/activities", "", admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var types []string
	for _, a := range decode[[]map[string]any](t, body) {
		types = append(types, a["type"].(string))
	}
	assert.Contains(t, types, "resolved")

	assert.Equal(t, before+1, resolvedToday())
}

func TestReportsRequireStaff(t *testing.T) {
	ts := newTestServer(t)

	customer := ts.login(t, "john", "customer123")
	resp, _ := ts.do(t, nethttp.MethodGet, "/api/reports/volume/7days", "", customer)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	agent := ts.login(t, "agent", "agent123")
	resp, body := ts.do(t, nethttp.MethodGet, "/api/reports/volume/7days", "", agent)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, body), 7)

	resp, body = ts.do(t, nethttp.MethodGet, "/api/reports/volume/last-week", "", agent)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid timeframe", decode[map[string]string](t, body)["message"])
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, nethttp.MethodGet, "/api/auth/session", "", nil)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
}
