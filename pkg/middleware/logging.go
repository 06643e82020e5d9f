package middleware

import (
	"sort"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	tracecontext "blog-moderation/pkg/context"
)

// LoggingMiddleware 日志中间件
type LoggingMiddleware struct {
	logger kratoslog.Logger
}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware(logger kratoslog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// GinLogging Gin日志中间件
func (lm *LoggingMiddleware) GinLogging() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		level := kratoslog.LevelInfo
		if param.StatusCode >= 500 {
			level = kratoslog.LevelError
		} else if param.StatusCode >= 400 {
			level = kratoslog.LevelWarn
		}

		ctx := param.Request.Context()
		clientIP := tracecontext.GetClientIP(ctx)
		if clientIP == "" {
			clientIP = param.ClientIP
		}

		keyvals := []interface{}{
			"msg", "HTTP request",
			"method", param.Method,
			"path", param.Path,
			"status", param.StatusCode,
			"latency", param.Latency.String(),
			"client_ip", clientIP,
			"error", param.ErrorMessage,
		}
		// 追踪字段：trace_id、request_id、user_id、comment_id
		fields := tracecontext.ExtractTraceContext(ctx).ToMap()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			keyvals = append(keyvals, k, fields[k])
		}

		lm.logger.Log(level, keyvals...)
		return ""
	})
}

// GinRecovery Gin恢复中间件
func (lm *LoggingMiddleware) GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		lm.logger.Log(kratoslog.LevelError,
			"msg", "HTTP request panic recovered",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"panic", recovered,
		)
		abortInternal(c)
	})
}
