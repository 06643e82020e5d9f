package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-service/converter"
	"blog-moderation/apps/comment-service/service"
	"blog-moderation/pkg/httpx"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/middleware"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc       *service.Service
	converter *converter.Converter
	logger    logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		converter: converter.NewConverter(),
		logger:    logger,
	}
}

// RegisterRoutes 注册路由，public 作用于公开的创建接口，moderate 为审核权限中间件
func (h *HTTPHandler) RegisterRoutes(engine *gin.Engine, public []gin.HandlerFunc, moderate ...gin.HandlerFunc) {
	engine.POST("/api/v1/comments", append(append([]gin.HandlerFunc{}, public...), h.CreateComment)...)

	api := engine.Group("/api/v1/comments", moderate...)
	{
		api.GET("", h.ListComments)
		api.GET("/:id", h.GetComment)
		api.PATCH("/:id", h.PatchComment)
		api.DELETE("/:id", h.DeleteComment)
		api.GET("/:id/logs", h.GetModerationLogs)
	}
}

// ListComments 获取全部评论
func (h *HTTPHandler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	comments, err := h.svc.ListComments(ctx)
	if err != nil {
		h.logger.Error(ctx, "List comments failed", logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, h.converter.BuildListCommentsResponse(comments, err), err)
}

// GetComment 获取单条评论
func (h *HTTPHandler) GetComment(c *gin.Context) {
	ctx := c.Request.Context()
	comment, err := h.svc.GetComment(ctx, c.Param("id"))
	if err != nil {
		h.logger.Warn(ctx, "Get comment failed",
			logger.F("commentID", c.Param("id")),
			logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, h.converter.BuildCommentResponse(comment, err), err)
}

// CreateComment 创建评论
func (h *HTTPHandler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req rest.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid create comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, h.invalidRequest(), err)
		return
	}

	comment, err := h.svc.CreateComment(ctx, h.converter.CreateParamsFromRest(&req))
	if err != nil {
		h.logger.Error(ctx, "Create comment failed", logger.F("error", err.Error()))
		httpx.WriteObject(c, h.converter.BuildCommentResponse(nil, err), err)
		return
	}
	c.JSON(http.StatusCreated, h.converter.BuildCommentResponse(comment, nil))
}

// PatchComment 修改评论状态、已读、置顶
func (h *HTTPHandler) PatchComment(c *gin.Context) {
	ctx := c.Request.Context()
	var patch rest.CommentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn(ctx, "Invalid patch comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, h.invalidRequest(), err)
		return
	}

	comment, err := h.svc.PatchComment(ctx, c.Param("id"), patch, c.GetInt64(middleware.ContextUserID))
	if err != nil {
		h.logger.Error(ctx, "Patch comment failed",
			logger.F("commentID", c.Param("id")),
			logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, h.converter.BuildCommentResponse(comment, err), err)
}

// DeleteComment 永久删除评论
func (h *HTTPHandler) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.svc.DeleteComment(ctx, c.Param("id"), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		h.logger.Error(ctx, "Delete comment failed",
			logger.F("commentID", c.Param("id")),
			logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, h.converter.BuildDeleteCommentResponse(err), err)
}

// GetModerationLogs 获取审核日志
func (h *HTTPHandler) GetModerationLogs(c *gin.Context) {
	ctx := c.Request.Context()
	logs, err := h.svc.GetModerationLogs(ctx, c.Param("id"))
	if err != nil {
		h.logger.Error(ctx, "Get moderation logs failed",
			logger.F("commentID", c.Param("id")),
			logger.F("error", err.Error()))
	}
	httpx.WriteObject(c, h.converter.BuildModerationLogsResponse(logs, err), err)
}

func (h *HTTPHandler) invalidRequest() *rest.ErrorResponse {
	return &rest.ErrorResponse{Success: false, Type: rest.ErrorTypeRequest, Message: "invalid request format"}
}
