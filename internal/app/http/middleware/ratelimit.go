package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-app/internal/errutil"
	"booking-app/internal/metrics"
	"booking-app/internal/ratelimit"
)

// RateLimit rejects clients exceeding the limiter's window with 429.
// Requests are let through when the limiter itself fails.
func RateLimit(l ratelimit.Limiter, logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		ctx := c.Request.Context()

		ok, err := l.Allow(ctx, route+"|"+c.ClientIP())
		if err != nil {
			errutil.LogError(ctx, logger, "rate limiter unavailable", err)
			c.Next()
			return
		}
		if !ok {
			m.RateLimit(route)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
