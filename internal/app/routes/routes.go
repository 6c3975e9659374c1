package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yigit/campusbuddy/internal/app/controllers"
	"github.com/yigit/campusbuddy/internal/app/models/dto"
	"github.com/yigit/campusbuddy/internal/middleware"
)

// HealthChecker reports whether the backing store answers
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options controls optional routes
type Options struct {
	MetricsEnabled bool
	MetricsPath    string
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	buddyController *controllers.BuddyController,
	health HealthChecker,
	opts Options,
) {
	if opts.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthHandler(health))

	// --- Buddy routes, caller identified by the gateway ---
	buddy := v1.Group("/buddy")
	buddy.Use(middleware.CallerIdentity())
	{
		buddy.POST("/optin", buddyController.OptIn)
		buddy.POST("/optout", buddyController.OptOut)
		buddy.GET("/match", buddyController.GetCurrentMatch)
		buddy.POST("/match/:id/meeting", buddyController.CreateMeeting)
		buddy.GET("/match/:id/meetings", buddyController.ListMeetings)
		buddy.POST("/meeting/:id/status", buddyController.UpdateMeetingStatus)
	}

	// Administrator trigger; access control is enforced by the gateway
	admin := v1.Group("/buddy/admin")
	{
		admin.POST("/match", buddyController.RunMatching)
	}
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if health != nil {
			if err := health.Ping(ctx); err != nil {
				detail := dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Database unreachable").
					WithSeverity(dto.ErrorSeverityCritical)
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	}
}
