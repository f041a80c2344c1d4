package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crowd-safety-service/internal/auth"
	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/ratelimit"
)

// Limiters holds the per-call-site rate guards. The strict limiter fronts
// emergency-mode mutations; the default limiter fronts ordinary writes.
type Limiters struct {
	Strict  *ratelimit.Limiter
	Default *ratelimit.Limiter
}

// NewRouter builds the gin engine. Gated writes run permission check
// first, then the rate limiter, then the handler; both rejections happen
// before any state mutation begins.
func NewRouter(h *Handler, authSvc *auth.Service, limiters Limiters, logger *logging.Logger, basePath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))
	r.Use(PrincipalMiddleware())

	api := r.Group(basePath)
	{
		// Emergency mode
		api.GET("/emergency", h.GetEmergency)
		api.POST("/emergency/activate",
			RequirePermission(authSvc, models.PermActivateEmergency),
			RateLimitMiddleware(limiters.Strict),
			h.ActivateEmergency)
		api.POST("/emergency/deactivate",
			RequirePermission(authSvc, models.PermActivateEmergency),
			RateLimitMiddleware(limiters.Strict),
			h.DeactivateEmergency)

		// Alerts
		api.GET("/alerts", h.ListAlerts)
		api.GET("/alerts/:id", h.GetAlert)
		api.POST("/alerts/:id/acknowledge",
			RequirePermission(authSvc, models.PermAcknowledgeAlert),
			RateLimitMiddleware(limiters.Default),
			h.AcknowledgeAlert)

		// Density ingest
		api.POST("/readings",
			RateLimitMiddleware(limiters.Default),
			h.SubmitReading)

		// Dashboards
		api.GET("/areas", h.GetAreas)
		api.GET("/principals/:id/permissions", h.GetPrincipalPermissions)
		api.GET("/ws", h.Dashboard)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
