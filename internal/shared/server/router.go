package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/auth"
	"recruit-backend/internal/dashboard"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/users"
)

// Rate limit groups.
const (
	groupDefault = "DEFAULT"
	groupBrowse  = "BROWSE"
	groupAuth    = "AUTH"
)

// RouterDeps carries the handlers and middleware collaborators the router mounts.
// Nil handlers are skipped.
type RouterDeps struct {
	Config       config.Config
	Identity     middleware.IdentityLookup
	Limiter      middleware.Limiter
	Health       HealthCheck
	Auth         *auth.Handler
	GoogleAuth   *auth.GoogleService
	Users        *users.Handler
	Jobs         *jobs.Handler
	Applications *applications.Handler
	Interviews   *interviews.Handler
	Dashboard    *dashboard.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	limit := middleware.RateLimit(rateLimitConfig(deps.Config, deps.Limiter))

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Health))
	api.GET("/metrics", metrics.Handler())

	public := api.Group("", middleware.OptionalAuth(deps.Identity), limit)
	if deps.Auth != nil {
		deps.Auth.RegisterPublicRoutes(public)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}
	if deps.Jobs != nil {
		deps.Jobs.RegisterPublicRoutes(public)
	}

	private := api.Group("", middleware.Auth(deps.Identity), limit)
	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(private)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(private)
	}
	if deps.Jobs != nil {
		deps.Jobs.RegisterRoutes(private)
	}
	if deps.Applications != nil {
		deps.Applications.RegisterRoutes(private)
	}
	if deps.Interviews != nil {
		deps.Interviews.RegisterRoutes(private)
	}
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(private)
	}

	return r
}

func rateLimitConfig(cfg config.Config, limiter middleware.Limiter) middleware.RateLimitConfig {
	rps := cfg.RateLimitRPS
	burst := cfg.RateLimitBurst
	return middleware.RateLimitConfig{
		DefaultGroup: groupDefault,
		Limiter:      limiter,
		GroupFor:     rateLimitGroup,
		Rules: map[string]middleware.RateLimitRule{
			groupDefault: {Rate: rps, Burst: burst},
			groupBrowse:  {Rate: rps * 4, Burst: burst * 2},
			groupAuth:    {Rate: 0.2, Burst: 10},
		},
	}
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case c.Request.Method == http.MethodPost && (strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/register")):
		return groupAuth
	case c.Request.Method == http.MethodGet && strings.Contains(path, "/jobs"):
		return groupBrowse
	default:
		return groupDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
