package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"blog-moderation/api/rest"
	"blog-moderation/pkg/auth"
	tracecontext "blog-moderation/pkg/context"
)

// gin上下文中的认证信息键
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthMiddleware 认证中间件配置
type AuthMiddleware struct {
	logger    kratoslog.Logger
	jwtKey    string
	skipPaths []string
	public    []publicRoute
}

type publicRoute struct {
	method string
	path   string
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(logger kratoslog.Logger, jwtKey string) *AuthMiddleware {
	return &AuthMiddleware{
		logger:    logger,
		jwtKey:    jwtKey,
		skipPaths: []string{"/health", "/metrics"},
	}
}

// AllowPublic 允许匿名访问指定方法和路径（精确匹配）
func (am *AuthMiddleware) AllowPublic(method, path string) {
	am.public = append(am.public, publicRoute{method: method, path: path})
}

// GinAuth Gin认证中间件
func (am *AuthMiddleware) GinAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.shouldSkipAuth(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		token := extractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Missing authorization token", "path", c.Request.URL.Path)
			abortUnauthorized(c, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := auth.ValidateJWT(token, am.jwtKey)
		if err != nil {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Invalid token", "error", err, "path", c.Request.URL.Path)
			abortUnauthorized(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Request = c.Request.WithContext(tracecontext.WithUserID(c.Request.Context(), claims.UserID))

		am.logger.Log(kratoslog.LevelDebug, "msg", "User authenticated", "userID", claims.UserID, "path", c.Request.URL.Path)
		c.Next()
	}
}

// RequireModerator 要求审核权限，需放在 GinAuth 之后
func (am *AuthMiddleware) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		claims := &auth.Claims{Role: role}
		if !claims.CanModerate() {
			am.logger.Log(kratoslog.LevelWarn, "msg", "Moderation permission denied", "role", role, "path", c.Request.URL.Path)
			abortUnauthorized(c, http.StatusForbidden, "moderation permission required")
			return
		}
		c.Next()
	}
}

// extractTokenFromHeader 从Authorization头中提取token，支持 "Bearer token" 和裸 token
func extractTokenFromHeader(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// shouldSkipAuth 判断是否跳过认证
func (am *AuthMiddleware) shouldSkipAuth(method, path string) bool {
	for _, skipPath := range am.skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	for _, route := range am.public {
		if route.method == method && route.path == path {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, rest.ErrorResponse{
		Success: false,
		Type:    rest.ErrorTypeRequest,
		Message: message,
	})
}
