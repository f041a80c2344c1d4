package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/auth"
	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/ratelimit"
)

// principalKey is the gin context key holding the caller's principal id.
const principalKey = "principal_id"

// principalHeader is set by the portal's authentication layer. This
// service never authenticates; it only authorizes the id it is handed.
const principalHeader = "X-Principal-ID"

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}

// PrincipalMiddleware copies the identity header into the context. It does
// not reject anonymous callers; permission checks fail closed downstream.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, c.GetHeader(principalHeader))
		c.Next()
	}
}

func principalID(c *gin.Context) string {
	return c.GetString(principalKey)
}

// RequirePermission rejects callers lacking the permission. An unknown or
// missing principal gets the same Forbidden as a known one without the
// grant. This gate runs before the rate limiter so denied traffic never
// consumes a legitimate caller's quota.
func RequirePermission(authSvc *auth.Service, perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authSvc.CheckPermission(principalID(c), perm) {
			writeError(c, apperr.Forbidden())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware counts one request per call, keyed by principal id
// or, for anonymous callers, by client IP.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := principalID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if allowed, retryAfter := limiter.Allow(key); !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			writeError(c, apperr.RateLimited(seconds))
			c.Abort()
			return
		}
		c.Next()
	}
}
