package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"blog-moderation/apps/comment-admin/handler"
	"blog-moderation/apps/comment-admin/remote"
	"blog-moderation/apps/comment-admin/store"
	"blog-moderation/apps/comment-admin/viewmodel"
	"blog-moderation/pkg/auth"
	"blog-moderation/pkg/lifecycle"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/server"
)

const serviceTokenTTL = 24 * time.Hour

func main() {
	app, err := server.NewApplication("comment-admin")
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	cfg := app.GetConfig()
	appLogger := app.GetLogger()

	app.EnableHTTP()

	// 未配置token时用共享密钥签发服务身份，供启动加载使用
	token := cfg.CommentClient.Token
	if token == "" {
		token, err = auth.GenerateJWT(cfg.App.JWTSecret, 0, cfg.App.Name, auth.RoleService, serviceTokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue service token: %v", err)
		}
	}

	commentService := remote.NewHTTPCommentService(cfg.CommentClient.BaseURL, token, cfg.CommentClient.Timeout, appLogger)
	vm := viewmodel.New(store.New(commentService))
	httpHandler := handler.NewHTTPHandler(vm, appLogger)

	authMiddleware := app.GetAuthMiddleware()
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine, authMiddleware.RequireModerator())
	})

	// 首次加载失败不影响启动，视图保持未就绪，可通过 reload 重试
	app.AddHook(lifecycle.Hook{
		Name:     "comment-view",
		Priority: server.PriorityBusiness,
		OnStart: func(ctx context.Context) error {
			if err := vm.Load(ctx); err != nil {
				appLogger.Warn(ctx, "Initial comment load failed",
					logger.F("baseURL", cfg.CommentClient.BaseURL),
					logger.F("error", err.Error()))
			}
			return nil
		},
	})

	if err := app.Run(); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
