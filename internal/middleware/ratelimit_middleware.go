package middleware

import (
	"fmt"
	"net/http"
	"time"

	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimiter limits login attempts per client IP using a fixed window
// counter in Redis. A nil client disables limiting so the API degrades
// gracefully when Redis is unavailable.
func LoginRateLimiter(client *redis.Client, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || maxAttempts <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis down mid-flight: let the request through rather than
			// locking everyone out.
			utils.LogWarn(err, "login rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				utils.LogWarn(err, "failed to set rate limit window")
			}
		}

		if count > int64(maxAttempts) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeRateLimited,
				"Too many login attempts. Try again later.",
				fmt.Sprintf("limit of %d attempts per %s exceeded", maxAttempts, window)))
			return
		}

		c.Next()
	}
}
