package routes

import (
	"time"

	"dropship-hub/config"
	"dropship-hub/controllers"
	middlewares "dropship-hub/middleware"
	"dropship-hub/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// guards are the middleware chains shared by the route groups
type guards struct {
	auth     gin.HandlerFunc
	optional gin.HandlerFunc
	admin    gin.HandlerFunc
	limit    gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	controllers.RegisterValidators()

	g := guards{
		auth:     middlewares.AuthMiddleware(cfg.Auth),
		optional: middlewares.OptionalAuth(cfg.Auth),
		admin:    middlewares.AdminMiddleware(models.GetUserByEmail),
		limit:    middlewares.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Limit(),
	}

	r.GET("/health", controllers.Health)

	SetupUserRoutes(r, g)
	SetupProductRoutes(r, g)
	SetupOrderRoutes(r, g)
	SetupAccountRoutes(r, g)
	SetupContentRoutes(r, g)
}
