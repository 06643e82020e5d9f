package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog-moderation/apps/comment-service/dao"
	"blog-moderation/apps/comment-service/handler"
	"blog-moderation/apps/comment-service/model"
	"blog-moderation/apps/comment-service/service"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/middleware"
	"blog-moderation/pkg/server"
	"blog-moderation/pkg/snowflake"
)

func main() {
	app, err := server.NewApplication("comment-service")
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	cfg := app.GetConfig()
	appLogger := app.GetLogger()
	ctx := context.Background()

	app.EnableHTTP()

	ids, err := snowflake.NewSnowflake(cfg.App.MachineID)
	if err != nil {
		log.Fatalf("Failed to create id generator: %v", err)
	}

	opts := service.Options{
		CacheTTL: cfg.Redis.CacheTTL,
		Topic:    cfg.Kafka.Topic,
	}

	var commentDAO dao.CommentDAO
	if cfg.App.Storage == "memory" {
		commentDAO = dao.NewMemoryCommentDAO()
		opts.LogDAO = dao.NewMemoryModerationLogDAO()
		appLogger.Warn(ctx, "Using in-memory storage, data is lost on restart")
	} else {
		postgreSQL, err := app.EnablePostgreSQL()
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		if err := postgreSQL.AutoMigrate(&model.Comment{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		commentDAO = dao.NewCommentDAO(postgreSQL)

		mongoDB, err := app.EnableMongoDB()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		opts.LogDAO, err = dao.NewModerationLogDAO(ctx, mongoDB)
		if err != nil {
			log.Fatalf("Failed to init moderation log storage: %v", err)
		}
	}

	// 缓存、限流与事件为可选依赖，不可用时降级运行
	var limiter middleware.Limiter
	if redisClient, err := app.EnableRedis(ctx); err != nil {
		appLogger.Warn(ctx, "Redis unavailable, list cache disabled", logger.F("error", err.Error()))
	} else {
		opts.Cache = redisClient
		limiter = redisClient
	}
	if producer, err := app.EnableKafka(); err != nil {
		appLogger.Warn(ctx, "Kafka unavailable, comment events disabled", logger.F("error", err.Error()))
	} else {
		opts.Publisher = producer
	}

	svc := service.NewService(commentDAO, ids, appLogger, opts)
	httpHandler := handler.NewHTTPHandler(svc, appLogger)

	authMiddleware := app.GetAuthMiddleware()
	authMiddleware.AllowPublic(http.MethodPost, "/api/v1/comments")

	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		createLimit := middleware.RateLimit(limiter, "comment_rate:", cfg.App.RateLimit, time.Minute, app.GetKratosLogger())
		httpHandler.RegisterRoutes(engine, []gin.HandlerFunc{createLimit}, authMiddleware.RequireModerator())
	})

	if err := app.Run(); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
