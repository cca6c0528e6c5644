package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/validation"
)

// Services bundles everything the HTTP layer calls into
type Services struct {
	Auth     service.IAuthService
	Profile  service.IProfileService
	Recipe   service.IRecipeService
	Rating   service.IRatingService
	Comment  service.ICommentService
	DB       *gorm.DB
	Redis    *redis.Client
	RateHour int
}

// NewServices builds the service layer over db. store may be nil when object storage is not configured.
func NewServices(db *gorm.DB, rdb *redis.Client, store service.ObjectStore, jwtSecret string, accessTTL, refreshTTL time.Duration, rateHour int) *Services {
	return &Services{
		Auth:     service.NewAuthService(db, jwtSecret, accessTTL, refreshTTL),
		Profile:  service.NewProfileService(db, store),
		Recipe:   service.NewRecipeService(db, store),
		Rating:   service.NewRatingService(db),
		Comment:  service.NewCommentService(db),
		DB:       db,
		Redis:    rdb,
		RateHour: rateHour,
	}
}

// RegisterRoutes mounts the API under /api/v1 plus /health and /metrics
func RegisterRoutes(router *gin.Engine, s *Services) {
	// custom tags must exist before the first ShouldBind
	validation.Engine()

	router.GET("/health", healthHandler(s.DB, s.Redis))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimit := middleware.NewAuthRateLimiter(s.Redis, s.RateHour).Middleware()
	createLimit := middleware.NewRecipeCreationRateLimiter(s.Redis, s.RateHour).Middleware()
	interactionLimit := middleware.NewInteractionRateLimiter(s.Redis, s.RateHour).Middleware()

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(s.Auth, s.Profile).RegisterRoutes(v1, authLimit)
		NewProfileHandler(s.Profile).RegisterRoutes(v1, s.Auth, interactionLimit)
		NewRecipeHandler(s.Recipe).RegisterRoutes(v1, s.Auth, RecipeLimits{
			Create:      createLimit,
			Interaction: interactionLimit,
		})
		NewRatingHandler(s.Rating).RegisterRoutes(v1, s.Auth, interactionLimit)
		NewCommentHandler(s.Comment).RegisterRoutes(v1, s.Auth, interactionLimit)
	}
}

func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := database.HealthCheck(ctx, db); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
