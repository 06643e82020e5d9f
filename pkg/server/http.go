package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"blog-moderation/pkg/config"
)

// NewGinEngine 创建Gin引擎，只带健康检查，中间件由Application统一挂载
func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	return r
}

// HTTPServer HTTP服务器接口
type HTTPServer interface {
	GetEngine() *gin.Engine
	RegisterRoutes(registerFunc func(*gin.Engine))
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Addr() string
}

// HTTPServerWrapper Gin HTTP服务器包装器
type HTTPServerWrapper struct {
	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
	logger   kratoslog.Logger
}

// NewHTTPServerWrapper 创建HTTP服务器包装器
func NewHTTPServerWrapper(c *config.Config, logger kratoslog.Logger) *HTTPServerWrapper {
	engine := NewGinEngine()

	timeout := c.Server.HTTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPServerWrapper{
		engine: engine,
		server: &http.Server{
			Addr:         c.Server.HTTP.Addr,
			Handler:      engine,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		logger: logger,
	}
}

// GetEngine 获取Gin引擎
func (w *HTTPServerWrapper) GetEngine() *gin.Engine {
	return w.engine
}

// RegisterRoutes 注册路由
func (w *HTTPServerWrapper) RegisterRoutes(registerFunc func(*gin.Engine)) {
	registerFunc(w.engine)
}

// Start 同步监听端口，后台提供服务；端口占用等错误直接返回
func (w *HTTPServerWrapper) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", w.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", w.server.Addr, err)
	}
	w.listener = ln
	w.logger.Log(kratoslog.LevelInfo, "msg", "HTTP server started", "addr", ln.Addr().String())

	go func() {
		if err := w.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Log(kratoslog.LevelError, "msg", "HTTP server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop 优雅停止服务器
func (w *HTTPServerWrapper) Stop(ctx context.Context) error {
	w.logger.Log(kratoslog.LevelInfo, "msg", "HTTP server stopping")
	return w.server.Shutdown(ctx)
}

// Addr 实际监听地址
func (w *HTTPServerWrapper) Addr() string {
	if w.listener != nil {
		return w.listener.Addr().String()
	}
	return w.server.Addr
}
