package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cedhtools/etl/internal/api/handler"
	"github.com/cedhtools/etl/internal/api/middleware"
	"github.com/cedhtools/etl/internal/config"
	"github.com/cedhtools/etl/internal/etl"
	"github.com/cedhtools/etl/internal/logger"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.Config,
	jobs etl.JobStore,
	counts handler.CountsReader,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(jobs)
	etlHandler := handler.NewEtlHandler(jobs, cfg.Server.APIKey)
	statsHandler := handler.NewStatsHandler(counts)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Job control. GET does its own auth so the bare liveness probe
		// stays open.
		v1.GET("/etl", etlHandler.Get)
		v1.POST("/etl", middleware.RequireAPIKey(cfg.Server.APIKey), etlHandler.Submit)

		// Stats
		v1.GET("/stats", statsHandler.GetStats)
	}

	return r
}
