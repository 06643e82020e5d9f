package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tracecontext "blog-moderation/pkg/context"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// OTelMiddleware OpenTelemetry中间件配置
type OTelMiddleware struct {
	serviceName string
}

// NewOTelMiddleware 创建OpenTelemetry中间件
func NewOTelMiddleware(serviceName string) *OTelMiddleware {
	return &OTelMiddleware{serviceName: serviceName}
}

// GinMiddleware 返回Gin的OpenTelemetry中间件：otelgin建span，再补充业务追踪信息
func (m *OTelMiddleware) GinMiddleware() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(m.serviceName),
		func(c *gin.Context) {
			ctx := m.enhanceContext(c.Request.Context(), c)
			c.Request = c.Request.WithContext(ctx)
			c.Header(HeaderRequestID, tracecontext.GetRequestID(ctx))
			c.Next()
		},
	}
}

// enhanceContext 增强context，添加业务追踪信息
func (m *OTelMiddleware) enhanceContext(ctx context.Context, c *gin.Context) context.Context {
	traceID := c.GetHeader("X-Trace-ID")
	if traceID == "" {
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}
	}
	ctx = tracecontext.WithTraceID(ctx, traceID)
	ctx = tracecontext.WithRequestID(ctx, c.GetHeader(HeaderRequestID))
	ctx = tracecontext.WithServiceInfo(ctx, m.serviceName, "")
	ctx = tracecontext.WithClientInfo(ctx, c.ClientIP(), c.GetHeader("User-Agent"))

	if id := c.Param("id"); id != "" {
		ctx = tracecontext.WithCommentID(ctx, id)
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.client_ip", c.ClientIP()),
		)
	}

	return ctx
}
