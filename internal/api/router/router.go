package router

import (
	"github.com/gin-gonic/gin"

	"github.com/grabtok/grabtok/internal/api/handlers"
	"github.com/grabtok/grabtok/internal/api/middleware"
	"github.com/grabtok/grabtok/internal/config"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
}

func NewRouter(cfg *config.Config, videoHandler *handlers.VideoHandler, healthHandler *handlers.HealthHandler) *Router {
	// Set Gin mode
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware
	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())
	engine.Use(middleware.SecurityHeadersMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))

	// Health endpoints (no auth required)
	health := engine.Group("/")
	health.Use(middleware.RateLimitMiddleware(cfg.API.HealthRateLimit, cfg.API.RateLimitWindow))
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	// API endpoints with optional API-key authentication and per-route
	// rate-limit ceilings
	api := engine.Group("/api/v1")
	api.Use(middleware.APIKeyMiddleware(&cfg.API))
	{
		video := api.Group("/video")
		{
			video.GET("/info",
				middleware.RateLimitMiddleware(cfg.API.InfoRateLimit, cfg.API.RateLimitWindow),
				videoHandler.GetVideoInfo) // /api/v1/video/info
			video.GET("/download",
				middleware.RateLimitMiddleware(cfg.API.DownloadRateLimit, cfg.API.RateLimitWindow),
				videoHandler.DownloadVideo) // /api/v1/video/download
		}
	}

	return &Router{
		engine: engine,
		config: cfg,
	}
}

func (r *Router) Addr() string {
	return r.config.Server.Host + ":" + r.config.Server.Port
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
