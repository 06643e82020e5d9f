package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"blog-moderation/pkg/config"
	"blog-moderation/pkg/database"
	"blog-moderation/pkg/kafka"
	"blog-moderation/pkg/lifecycle"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/middleware"
	"blog-moderation/pkg/redis"
	"blog-moderation/pkg/telemetry"
)

// 钩子优先级
const (
	PriorityInfrastructure = 10
	PriorityServers        = 100
	PriorityClients        = 200
	PriorityBusiness       = 300
)

// Application 应用程序框架
type Application struct {
	serviceName    string
	config         *config.Config
	logger         kratoslog.Logger
	originalLogger logger.Logger
	serverManager  *ServerManager
	lifecycle      *lifecycle.LifecycleManager

	// 基础设施组件，按需启用
	mongoDB       *database.MongoDB
	postgreSQL    *database.PostgreSQL
	redisClient   *redis.RedisClient
	kafkaProducer *kafka.Producer

	// 中间件
	authMiddleware    *middleware.AuthMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	otelMiddleware    *middleware.OTelMiddleware

	httpRouteRegister func(*gin.Engine)
}

// NewApplication 创建应用程序
func NewApplication(serviceName string) (*Application, error) {
	cfg, err := config.LoadConfig(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.App.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	originalLogger := logger.GetLogger()

	kratosLogger := logger.NewKratosStdLogger(cfg.App.Name, cfg.App.Version, cfg.App.LogLevel)

	if err := telemetry.InitGlobal(&telemetry.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    "development",
		ExporterType:   cfg.Telemetry.Exporter,
		SampleRate:     cfg.Telemetry.SampleRate,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	app := &Application{
		serviceName:       serviceName,
		config:            cfg,
		logger:            kratosLogger,
		originalLogger:    originalLogger,
		serverManager:     NewServerManager(cfg, kratosLogger),
		lifecycle:         lifecycle.NewLifecycleManager(kratosLogger),
		authMiddleware:    middleware.NewAuthMiddleware(kratosLogger, cfg.App.JWTSecret),
		loggingMiddleware: middleware.NewLoggingMiddleware(kratosLogger),
		otelMiddleware:    middleware.NewOTelMiddleware(cfg.App.Name),
	}

	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "telemetry",
		Priority: PriorityInfrastructure - 1,
		OnStop:   telemetry.ShutdownGlobal,
	})

	return app, nil
}

// EnablePostgreSQL 连接PostgreSQL
func (app *Application) EnablePostgreSQL() (*database.PostgreSQL, error) {
	if app.postgreSQL != nil {
		return app.postgreSQL, nil
	}
	pg, err := database.NewPostgreSQL(app.config.Database.PostgreSQL.DSN)
	if err != nil {
		return nil, err
	}
	app.postgreSQL = pg
	app.addCloser("postgresql", pg.Close)
	return pg, nil
}

// EnableMongoDB 连接MongoDB
func (app *Application) EnableMongoDB() (*database.MongoDB, error) {
	if app.mongoDB != nil {
		return app.mongoDB, nil
	}
	mongoDB, err := database.NewMongoDB(app.config.Database.MongoDB.URI, app.config.Database.MongoDB.DBName)
	if err != nil {
		return nil, err
	}
	app.mongoDB = mongoDB
	app.addCloser("mongodb", mongoDB.Close)
	return mongoDB, nil
}

// EnableRedis 创建Redis客户端并检查连通性
func (app *Application) EnableRedis(ctx context.Context) (*redis.RedisClient, error) {
	if app.redisClient != nil {
		return app.redisClient, nil
	}
	client := redis.NewRedisClient(app.config.Redis.Addr, app.config.Redis.Password, app.config.Redis.DB)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.redisClient = client
	app.addCloser("redis", client.Close)
	return client, nil
}

// EnableKafka 创建Kafka生产者
func (app *Application) EnableKafka() (*kafka.Producer, error) {
	if app.kafkaProducer != nil {
		return app.kafkaProducer, nil
	}
	producer, err := kafka.InitProducer(app.config.Kafka.Brokers, app.originalLogger)
	if err != nil {
		return nil, err
	}
	app.kafkaProducer = producer
	app.addCloser("kafka", producer.Close)
	return producer, nil
}

// addCloser 注册基础设施关闭钩子，最后停止
func (app *Application) addCloser(name string, closeFn func() error) {
	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     name,
		Priority: PriorityInfrastructure,
		OnStop: func(context.Context) error {
			return closeFn()
		},
	})
}

// EnableHTTP 启用HTTP服务器并挂载公共中间件
func (app *Application) EnableHTTP() HTTPServer {
	httpServer := app.serverManager.EnableHTTP()

	httpServer.RegisterRoutes(func(engine *gin.Engine) {
		engine.Use(app.otelMiddleware.GinMiddleware()...)
		engine.Use(app.loggingMiddleware.GinLogging())
		engine.Use(app.loggingMiddleware.GinRecovery())
		engine.Use(app.authMiddleware.GinAuth())
	})

	return httpServer
}

// RegisterHTTPRoutes 注册HTTP路由
func (app *Application) RegisterHTTPRoutes(registerFunc func(*gin.Engine)) {
	app.httpRouteRegister = registerFunc
}

// AddHook 注册业务生命周期钩子
func (app *Application) AddHook(hook lifecycle.Hook) {
	app.lifecycle.AddHook(hook)
}

// GetAuthMiddleware 获取认证中间件
func (app *Application) GetAuthMiddleware() *middleware.AuthMiddleware {
	return app.authMiddleware
}

// GetLogger 获取业务日志器
func (app *Application) GetLogger() logger.Logger {
	return app.originalLogger
}

// GetKratosLogger 获取Kratos日志器
func (app *Application) GetKratosLogger() kratoslog.Logger {
	return app.logger
}

// GetConfig 获取配置
func (app *Application) GetConfig() *config.Config {
	return app.config
}

// Run 运行应用程序，直到收到退出信号
func (app *Application) Run() error {
	if app.httpRouteRegister != nil {
		if err := app.serverManager.RegisterHTTPRoutes(app.httpRouteRegister); err != nil {
			return err
		}
	}

	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "servers",
		Priority: PriorityServers,
		OnStart:  app.serverManager.StartAll,
		OnStop:   app.serverManager.StopAll,
	})

	if err := app.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle: %w", err)
	}

	return app.lifecycle.Wait()
}
