package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"filegate/internal/handler"
	"filegate/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *slog.Logger,
	allowedOrigins []string,
	parseH *handler.ParseHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/formats", parseH.Formats)

	parse := v1.Group("/parse")
	parse.POST("", parseH.Parse)
	parse.POST("/batch", parseH.Batch)
	parse.POST("/stream", parseH.Stream)

	return r
}
