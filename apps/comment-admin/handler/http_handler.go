package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-admin/remote"
	"blog-moderation/apps/comment-admin/viewmodel"
	"blog-moderation/pkg/httpx"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/utils"
)

// 后台展示文案
const (
	DefaultAlertMessage  = "Operation failed!"
	DeleteConfirmMessage = "Are you sure to delete the comment permanently?"

	excerptLength     = 50
	postExcerptLength = 40
)

// requestError 请求本身不成立（评论不存在、状态不允许等）
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// HTTPStatus 实现 httpx.StatusCoder
func (e *requestError) HTTPStatus() int {
	return e.status
}

// HTTPHandler 后台审核HTTP处理器
type HTTPHandler struct {
	vm     *viewmodel.ViewModel
	logger logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(vm *viewmodel.ViewModel, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{vm: vm, logger: logger}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(engine *gin.Engine, moderate ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{}, moderate...)
	handlers = append(handlers, forwardToken())

	api := engine.Group("/api/v1/admin/comments", handlers...)
	{
		api.GET("", h.GetView)
		api.POST("/reload", h.Reload)
		api.POST("/delete/confirm", h.ConfirmDelete)
		api.POST("/delete/cancel", h.CancelDelete)
		api.DELETE("/error", h.DismissError)

		api.POST("/:id/refresh", h.Refresh)
		api.POST("/:id/top", h.withComment(h.vm.ToggleTop))
		api.POST("/:id/censor", h.withComment(h.vm.Censor))
		api.POST("/:id/restore", h.withComment(h.vm.Restore))
		api.POST("/:id/read", h.withComment(h.vm.MarkReadOnExpand))
		api.POST("/:id/delete", h.RequestDelete)
	}
}

// forwardToken 把操作人的token透传给评论服务
func forwardToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != "" {
			c.Request = c.Request.WithContext(remote.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// GetView 获取当前审核视图
func (h *HTTPHandler) GetView(c *gin.Context) {
	h.respond(c, nil)
}

// Reload 重新拉取全部评论
func (h *HTTPHandler) Reload(c *gin.Context) {
	h.respond(c, h.vm.Load(c.Request.Context()))
}

// Refresh 重新获取单条评论
func (h *HTTPHandler) Refresh(c *gin.Context) {
	h.respond(c, h.vm.Refresh(c.Request.Context(), c.Param("id")))
}

// withComment 定位评论后执行审核操作
func (h *HTTPHandler) withComment(op func(context.Context, rest.Comment) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		comment, ok := h.vm.Find(c.Param("id"))
		if !ok {
			h.respond(c, &requestError{status: http.StatusNotFound, message: "comment " + c.Param("id") + " not found"})
			return
		}
		h.respond(c, op(c.Request.Context(), comment))
	}
}

// RequestDelete 请求永久删除，等待确认
func (h *HTTPHandler) RequestDelete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.vm.Find(id); !ok {
		h.respond(c, &requestError{status: http.StatusNotFound, message: "comment " + id + " not found"})
		return
	}
	if err := h.vm.RequestPermanentDelete(id); err != nil {
		h.respond(c, &requestError{status: http.StatusConflict, message: err.Error()})
		return
	}
	h.respond(c, nil)
}

// ConfirmDelete 确认永久删除
func (h *HTTPHandler) ConfirmDelete(c *gin.Context) {
	if _, ok := h.vm.PendingDelete(); !ok {
		h.respond(c, &requestError{status: http.StatusConflict, message: "no comment is awaiting deletion"})
		return
	}
	h.respond(c, h.vm.ConfirmPermanentDelete(c.Request.Context()))
}

// CancelDelete 取消永久删除
func (h *HTTPHandler) CancelDelete(c *gin.Context) {
	h.vm.CancelPermanentDelete()
	h.respond(c, nil)
}

// DismissError 关闭错误提示
func (h *HTTPHandler) DismissError(c *gin.Context) {
	h.vm.DismissError()
	h.respond(c, nil)
}

// respond 返回操作结果和最新视图
func (h *HTTPHandler) respond(c *gin.Context, err error) {
	resp := &rest.ModerationViewResponse{Success: err == nil, View: BuildView(h.vm.Snapshot())}
	if err != nil {
		ctx := c.Request.Context()
		h.logger.Warn(ctx, "Moderation operation failed",
			logger.F("path", c.FullPath()),
			logger.F("commentID", c.Param("id")),
			logger.F("error", err.Error()))

		resp.Message = err.Error()
		resp.Type = rest.ErrorTypeRequest
		if remote.IsCommentError(err) {
			resp.Type = rest.ErrorTypeComment
			resp.Message = alertMessage(err)
		}
	}
	httpx.WriteObject(c, resp, err)
}

// BuildView 把视图模型快照转换为响应
func BuildView(v viewmodel.View) *rest.ModerationView {
	view := &rest.ModerationView{
		Ready:          v.Ready,
		Published:      adminComments(v.Published),
		Censored:       adminComments(v.Censored),
		PublishedCount: len(v.Published),
		CensoredCount:  len(v.Censored),
	}
	if v.PendingDelete != "" {
		view.PendingDelete = &rest.PendingDelete{CommentID: v.PendingDelete, Message: DeleteConfirmMessage}
	}
	if remote.IsCommentError(v.Err) {
		view.Alert = &rest.AdminAlert{Type: rest.ErrorTypeComment, Message: alertMessage(v.Err)}
	}
	return view
}

func adminComments(comments []rest.Comment) []rest.AdminComment {
	if comments == nil {
		return nil
	}
	result := make([]rest.AdminComment, 0, len(comments))
	for _, c := range comments {
		result = append(result, rest.AdminComment{
			Comment:     c,
			Excerpt:     utils.TruncateRunes(c.Content, excerptLength),
			PostExcerpt: utils.TruncateRunes(c.Post.Title, postExcerptLength),
			AuthorName:  c.Author.FullName(),
			HasAvatar:   c.Author.Avatar != "",
			Highlighted: !c.IsRead,
		})
	}
	return result
}

// alertMessage 评论服务给出的消息，没有时使用默认文案
func alertMessage(err error) string {
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return DefaultAlertMessage
}
