package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"screening-backend/internal/screenings"
	"screening-backend/internal/services/health"
	"screening-backend/internal/shared/auth"
	"screening-backend/internal/shared/config"
	"screening-backend/internal/shared/metrics"
	"screening-backend/internal/shared/server/middleware"
	"screening-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers and collaborators mounted by NewRouter.
type RouterDeps struct {
	Config           config.Config
	Signer           *auth.Signer
	Health           *health.Service
	ScreeningHandler *screenings.Handler
	RateLimits       map[string]middleware.RateLimitRule
}

// DefaultRateLimits bounds calls that reach external providers.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.RateLimitAnalyze: {Rate: 0.2, Burst: 5},
		middleware.RateLimitConfirm: {Rate: 0.2, Burst: 5},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})

	sessions := api.Group("")
	sessions.Use(
		middleware.Session(deps.Signer, deps.Config.Env == "production"),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    deps.RateLimits,
			GroupFor: middleware.ScreeningRateLimitGroup,
		}),
	)
	if deps.ScreeningHandler != nil {
		deps.ScreeningHandler.RegisterRoutes(sessions)
	}

	return r
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
