package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"blog-moderation/api/rest"
)

// Limiter 限流计数器，*redis.RedisClient 满足该接口
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端IP限流，计数器不可用时放行
func RateLimit(limiter Limiter, prefix string, limit int, window time.Duration, logger kratoslog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := prefix + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Log(kratoslog.LevelWarn, "msg", "Rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			logger.Log(kratoslog.LevelInfo, "msg", "Rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rest.ErrorResponse{
				Success: false,
				Type:    rest.ErrorTypeRequest,
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}
