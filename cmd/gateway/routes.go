package main

import (
	"context"
	"net/http"
	"time"

	"syntra-pos/config"
	"syntra-pos/internal/database"
	"syntra-pos/internal/gateway/handlers"
	"syntra-pos/internal/gateway/middleware"
	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type routerDeps struct {
	cfg     config.Config
	logger  *zap.Logger
	db      *gorm.DB
	redis   *redis.Client
	issuer  *utils.TokenIssuer
	pos     *handlers.POSHTTPHandler
	catalog *handlers.CatalogHTTPHandler
	clock   utils.Clock
}

func setupRouter(deps routerDeps) (*gin.Engine, error) {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(deps.logger))
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.CORS(deps.cfg.HTTP.AllowOrigins))
	if deps.cfg.RateLimit.Enabled {
		limit, err := middleware.RateLimit(deps.cfg.RateLimit.Rate)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}

	api := r.Group("/api/v1")
	if deps.cfg.Auth.Enabled {
		api.Use(middleware.JWTAuth(deps.issuer))
	}
	deps.pos.Register(api)
	deps.catalog.Register(api)

	r.GET("/health", healthCheckHandler(deps))
	r.GET("/health/detailed", detailedHealthCheckHandler(deps))

	return r, nil
}

func healthCheckHandler(deps routerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		if err := database.Ping(deps.db); err != nil {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"message":   "Server is running",
			"timestamp": deps.clock.Now(),
		})
	}
}

func detailedHealthCheckHandler(deps routerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		services := map[string]interface{}{
			"database": checkServiceHealth(database.Ping(deps.db)),
		}
		if deps.redis != nil {
			services["redis"] = checkServiceHealth(deps.redis.Ping(ctx).Err())
		}

		overallStatus := "healthy"
		httpStatus := http.StatusOK
		for _, service := range services {
			if serviceMap, ok := service.(map[string]interface{}); ok {
				if serviceMap["status"] != "healthy" {
					overallStatus = "degraded"
					httpStatus = http.StatusServiceUnavailable
				}
			}
		}

		c.JSON(httpStatus, gin.H{
			"overall_status": overallStatus,
			"services":       services,
			"timestamp":      deps.clock.Now(),
		})
	}
}

func checkServiceHealth(err error) map[string]interface{} {
	if err != nil {
		return map[string]interface{}{
			"status":  "unavailable",
			"message": err.Error(),
		}
	}
	return map[string]interface{}{
		"status":  "healthy",
		"message": "Service is responding",
	}
}
