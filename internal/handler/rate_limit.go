package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/service"
)

// RateLimitMiddleware throttles a route by key. Limiter failures other
// than an exceeded limit let the request through.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			if strings.Contains(err.Error(), "rate limit exceeded") {
				rejectRateLimited(c, rateLimiter, key, limit, window, err.Error())
				return
			}
			c.Next()
			return
		}

		if !allowed {
			rejectRateLimited(c, rateLimiter, key, limit, window, "rate limit exceeded")
			return
		}

		remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, rateLimiter *service.RateLimiter, key string, limit int, window time.Duration, detail string) {
	remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Retry-After", extractRetryAfter(detail))

	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		dto.NewError(http.StatusTooManyRequests, "too many requests, please try again later", detail))
}

// IPBasedKey builds the rate limit key from the client IP. The first
// entry of X-Forwarded-For wins when the service sits behind a proxy.
func IPBasedKey(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}
	return c.ClientIP()
}

// extractRetryAfter pulls the wait hint out of a limiter error like
// "rate limit exceeded, try again in 45s".
func extractRetryAfter(errMsg string) string {
	if strings.Contains(errMsg, "try again in") {
		parts := strings.Split(errMsg, "try again in")
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1])
		}
	}
	return "60"
}
