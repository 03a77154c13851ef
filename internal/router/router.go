package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	appointmenthandler "github.com/jwalitptl/clinic-crm/internal/handler/appointment"
	authhandler "github.com/jwalitptl/clinic-crm/internal/handler/auth"
	clienthandler "github.com/jwalitptl/clinic-crm/internal/handler/client"
	dashboardhandler "github.com/jwalitptl/clinic-crm/internal/handler/dashboard"
	"github.com/jwalitptl/clinic-crm/internal/handler/health"
	"github.com/jwalitptl/clinic-crm/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-crm/internal/middleware"
	"github.com/jwalitptl/clinic-crm/internal/service/appointment"
	"github.com/jwalitptl/clinic-crm/internal/service/auth"
	"github.com/jwalitptl/clinic-crm/internal/service/client"
	"github.com/jwalitptl/clinic-crm/internal/service/dashboard"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/httputil"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	ServiceName      string
	Production       bool
	SecureCookie     bool
	CORSOrigins      []string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	Tracing          bool
}

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth         *auth.Service
	Appointments *appointment.Service
	Clients      *client.Service
	Dashboard    *dashboard.Service
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	auth    *middleware.AuthMiddleware
	authH   *authhandler.Handler
	healthH *health.Handler
	metricH *prometheus.Handler
	apiH    []Handler
	metrics *metrics.Metrics
}

func NewRouter(config RouterConfig, svc Services, m *metrics.Metrics, checks map[string]health.Check) *Router {
	r := &Router{
		engine:  gin.New(),
		config:  config,
		auth:    middleware.NewAuthMiddleware(svc.Auth),
		authH:   authhandler.NewHandler(svc.Auth, config.SecureCookie),
		healthH: health.NewHandler(checks),
		metricH: prometheus.New(m.Registry()),
		apiH: []Handler{
			appointmenthandler.NewHandler(svc.Appointments),
			clienthandler.NewHandler(svc.Clients),
			dashboardhandler.NewHandler(svc.Dashboard),
		},
		metrics: m,
	}
	r.Setup()
	return r
}

func (r *Router) Setup() {
	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(r.metrics),
	)
	if r.config.Tracing {
		r.engine.Use(otelgin.Middleware(r.config.ServiceName))
	}
	r.engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(r.config.Production)),
		middleware.CORS(middleware.DefaultCORSConfig(r.config.CORSOrigins)),
	)
	if r.config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		r.engine.Use(limiter.RateLimit())
	}

	r.healthH.RegisterRoutes(r.engine)
	r.metricH.RegisterRoutes(r.engine)

	api := r.engine.Group("/api")
	r.authH.RegisterRoutes(api, r.auth.Authenticate())

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.apiH {
		h.RegisterRoutes(protected)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		httputil.RespondWithError(c, apperrors.NotFound("Route", nil))
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
