package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rse/internal/handler"
	"rse/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ComplianceHandler *handler.ComplianceHandler
	DriverHandler     *handler.DriverHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Compliance routes.
		compliance := v1.Group("/compliance")
		{
			compliance.POST("/validate", deps.ComplianceHandler.Validate)
			compliance.POST("/alternatives", deps.ComplianceHandler.Alternatives)
			compliance.POST("/check-cumulative", deps.ComplianceHandler.CheckCumulative)

			compliance.GET("/rules", deps.ComplianceHandler.ListRules)
			compliance.GET("/rules/license/:licenseCategoryId", deps.ComplianceHandler.GetRules)
			compliance.PUT("/rules/license/:licenseCategoryId", deps.ComplianceHandler.UpsertRules)
			compliance.GET("/rules/vehicle/:vehicleCategoryId", deps.ComplianceHandler.GetVehicleRules)

			compliance.GET("/decisions", deps.ComplianceHandler.ListDecisions)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("/:id/counters", deps.DriverHandler.GetCounters)
			drivers.POST("/:id/activities", deps.DriverHandler.CommitActivity)
		}
	}

	return router
}
