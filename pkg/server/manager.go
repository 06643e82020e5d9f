package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"blog-moderation/pkg/config"
)

// ServerManager 统一服务器管理器
type ServerManager struct {
	config     *config.Config
	logger     kratoslog.Logger
	httpServer HTTPServer
	servers    []Server
	mu         sync.RWMutex
}

// Server 通用服务器接口
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NewServerManager 创建服务器管理器
func NewServerManager(cfg *config.Config, logger kratoslog.Logger) *ServerManager {
	return &ServerManager{
		config: cfg,
		logger: logger,
	}
}

// EnableHTTP 启用HTTP服务器
func (sm *ServerManager) EnableHTTP() HTTPServer {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.httpServer == nil {
		sm.httpServer = NewHTTPServerWrapper(sm.config, sm.logger)
		sm.servers = append(sm.servers, sm.httpServer)
	}
	return sm.httpServer
}

// GetHTTPServer 获取HTTP服务器
func (sm *ServerManager) GetHTTPServer() HTTPServer {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.httpServer
}

// RegisterHTTPRoutes 注册HTTP路由
func (sm *ServerManager) RegisterHTTPRoutes(registerFunc func(*gin.Engine)) error {
	httpServer := sm.GetHTTPServer()
	if httpServer == nil {
		return fmt.Errorf("HTTP server not enabled")
	}
	httpServer.RegisterRoutes(registerFunc)
	return nil
}

// StartAll 启动所有服务器，失败时停止已启动的
func (sm *ServerManager) StartAll(ctx context.Context) error {
	sm.mu.RLock()
	servers := append([]Server(nil), sm.servers...)
	sm.mu.RUnlock()

	for i, s := range servers {
		if err := s.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = servers[j].Stop(ctx)
			}
			return err
		}
	}

	sm.logger.Log(kratoslog.LevelInfo, "msg", "All servers started", "count", len(servers))
	return nil
}

// StopAll 停止所有服务器
func (sm *ServerManager) StopAll(ctx context.Context) error {
	sm.mu.RLock()
	servers := append([]Server(nil), sm.servers...)
	sm.mu.RUnlock()

	var errs []error
	for _, s := range servers {
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors stopping servers: %w", errors.Join(errs...))
	}
	return nil
}
