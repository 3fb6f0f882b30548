package middleware

import (
	"net/http"
	"time"

	"hobbyhub/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rate_limit:"

// RateLimitKey is the counter shared by every route for one client.
func RateLimitKey(client string) string {
	return rateLimitPrefix + client
}

// RateLimitMiddleware allows limit requests per window for each session user,
// counted across all routes. Requests without a session fall back to the client IP.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := session.UserID(c.Request.Context())
		if client == "" {
			client = c.ClientIP()
		}
		key := RateLimitKey(client)

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if count == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
