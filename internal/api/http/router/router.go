package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/handler"
	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/article"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/auth"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/ticket"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/user"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Auth       authorize.IAuthorization
	Sessions   *session.Manager
	AuthSvc    auth.Service
	UserSvc    user.Service
	TicketSvc  ticket.Service
	StatsSvc   stats.Service
	ArticleSvc article.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.SessionRequired(r.p.AuthSvc, r.p.Sessions)

	// Permission helper
	requirePerm := func(perm authorize.Permission) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, perm)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, r.p.Sessions)
	userH := handler.NewUserHandler(r.p.UserSvc)
	ticketH := handler.NewTicketHandler(r.p.TicketSvc)
	statsH := handler.NewStatsHandler(r.p.StatsSvc)

	api := app.Group("/api")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerUserRoutes(api, userH, authRequired, requirePerm)
	r.registerTicketRoutes(api, ticketH, authRequired, requirePerm)
	r.registerStatsRoutes(api, statsH, authRequired, requirePerm)
	if r.p.Cfg.Knowledge.Enabled {
		r.registerArticleRoutes(api, handler.NewArticleHandler(r.p.ArticleSvc), authRequired, requirePerm)
	}
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		app.Get(r.MetricsPath(), adaptor.HTTPHandler(promhttp.Handler()))
	}
}

func (r *Router) MetricsPath() string {
	if path := r.p.Cfg.Observability.Metrics.Path; path != "" {
		return path
	}
	return "/metrics"
}
