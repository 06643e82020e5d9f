package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-moderation/api/rest"
	"blog-moderation/pkg/logger"
)

// Recovery 错误恢复中间件（业务日志版本）
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error(c.Request.Context(), "Panic recovered",
					logger.F("error", err),
					logger.F("method", c.Request.Method),
					logger.F("path", c.Request.URL.Path))
				abortInternal(c)
			}
		}()

		c.Next()
	}
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, rest.ErrorResponse{
		Success: false,
		Type:    rest.ErrorTypeRequest,
		Message: "internal server error",
	})
}
