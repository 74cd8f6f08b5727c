package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/api/handlers"
	"github.com/yourusername/vid2pdf-go/api/middleware"
	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// RouterDeps holds what the HTTP API serves
type RouterDeps struct {
	Runs     handlers.RunService
	Metadata domain.MetadataSource
	Selector domain.FormatSelector
	LogsDir  string
	Version  string
	Logger   *zap.Logger
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(deps.Runs, deps.Version)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		formatHandler := handlers.NewFormatHandler(deps.Metadata, deps.Selector)
		v1.GET("/formats", formatHandler.ListFormats)

		runHandler := handlers.NewRunHandler(deps.Runs, deps.Logger)
		eventsHandler := handlers.NewRunEventsHandler(deps.Runs, deps.Logger, 0)
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.CreateRun)
			runs.GET("/:id", runHandler.GetRun)
			runs.GET("/:id/events", eventsHandler.Stream)
		}

		logHandler := handlers.NewLogHandler(deps.LogsDir)
		v1.GET("/logs/tools", logHandler.GetToolsLog)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
