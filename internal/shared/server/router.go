// Package server assembles the HTTP router and middleware chain.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/shared/metrics"
	"nextstep-backend/internal/shared/server/middleware"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Deps carries everything the router needs to come up.
type Deps struct {
	Env         string
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter

	// StaticFilesDir serves stored resumes under /files when the local
	// store is in use. Empty disables it.
	StaticFilesDir string

	Handlers []RouteRegistrar
}

// NewRouter builds the gin engine with the full middleware chain and
// all feature routes mounted under /api/v1.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(deps.CORSOrigins))
	if deps.RateLimiter != nil {
		r.Use(middleware.RateLimit(deps.RateLimiter))
	}
	r.Use(middleware.Auth())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(metrics.Render()))
	})

	if deps.StaticFilesDir != "" {
		r.Static("/files", deps.StaticFilesDir)
	}

	api := r.Group("/api/v1")
	for _, h := range deps.Handlers {
		h.RegisterRoutes(api)
	}
	return r
}
