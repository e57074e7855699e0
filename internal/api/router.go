package api

import (
	"net/http"
	"time"

	"github.com/fieldservice-timesheet-api/internal/config"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, hub *store.Hub, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	jwtManager := NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := NewAuthHandler(services.Roster, jwtManager, log)
	timesheetHandler := NewTimesheetHandler(services, log)
	userHandler := NewUserHandler(services, log)
	formHandler := NewFormHandler(services, log)
	settingHandler := NewSettingHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)
	syncHandler := NewSyncHandler(hub, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(authMiddleware(jwtManager))
	{
		// Weekly timesheet view
		authed.GET("/timesheets/:technician_id", timesheetHandler.GetWeek)

		// Mission endpoints
		missions := authed.Group("/missions")
		{
			missions.GET("", timesheetHandler.ListMissions)
			missions.POST("", timesheetHandler.CreateMission)
			missions.GET("/:id", timesheetHandler.GetMission)
			missions.PUT("/:id", timesheetHandler.UpdateMission)
			missions.DELETE("/:id", timesheetHandler.DeleteMission)
			missions.PUT("/:id/status",
				requireRole(models.RoleManager, models.RoleAdmin),
				timesheetHandler.SetStatus)
		}

		// Roster endpoints
		users := authed.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", requireRole(models.RoleAdmin), userHandler.Upsert)
			users.PUT("/:id", requireRole(models.RoleAdmin), userHandler.Upsert)
			users.DELETE("/:id", requireRole(models.RoleAdmin), userHandler.Delete)
		}

		// Form template and response endpoints
		forms := authed.Group("/forms")
		{
			forms.GET("/templates", formHandler.ListTemplates)
			forms.POST("/templates", requireRole(models.RoleManager, models.RoleAdmin), formHandler.SaveTemplate)
			forms.GET("/templates/:id", formHandler.GetTemplate)
			forms.PUT("/templates/:id", requireRole(models.RoleManager, models.RoleAdmin), formHandler.SaveTemplate)
			forms.DELETE("/templates/:id", requireRole(models.RoleManager, models.RoleAdmin), formHandler.DeleteTemplate)
			forms.GET("/responses", formHandler.ListResponses)
			forms.POST("/responses", formHandler.SaveResponse)
			forms.GET("/responses/:id", formHandler.GetResponse)
			forms.DELETE("/responses/:id", formHandler.DeleteResponse)
		}

		// Settings endpoints
		settings := authed.Group("/settings")
		{
			settings.GET("", settingHandler.All)
			settings.GET("/:key", settingHandler.Get)
			settings.PUT("/:key", requireRole(models.RoleAdmin), settingHandler.Set)
		}

		// Import endpoints
		imports := authed.Group("/imports")
		imports.Use(requireRole(models.RoleManager, models.RoleAdmin))
		{
			imports.POST("", importHandler.CreateImport)
			imports.GET("/:job_id", importHandler.GetImportStatus)
			imports.GET("/:job_id/errors", importHandler.GetImportErrors)
		}

		// Export endpoints
		exports := authed.Group("/exports")
		exports.Use(requireRole(models.RoleManager, models.RoleAdmin))
		{
			exports.GET("", exportHandler.StreamExport)
		}

		// Change feed
		authed.GET("/sync/watch", syncHandler.Watch)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "timesheet-api",
	})
}

// metricsHandler returns record counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		missionsCount, _ := services.Export.GetCount(ctx, models.ResourceMissions)
		rosterCount, _ := services.Export.GetCount(ctx, models.ResourceRoster)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"missions": missionsCount,
				"roster":   rosterCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
