package dao

import (
	"context"

	"blog-moderation/apps/comment-service/model"
)

// CommentDAO 评论数据访问接口，查不到时返回 model.ErrCommentNotFound
type CommentDAO interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentID int64) (*model.Comment, error)
	// ListComments 全部评论，按创建时间倒序
	ListComments(ctx context.Context) ([]*model.Comment, error)
	// UpdateComment 仅修改 update 中出现的字段，返回修改后的评论
	UpdateComment(ctx context.Context, commentID int64, update model.CommentUpdate) (*model.Comment, error)
	// DeleteComment 仅当当前状态为 status 时删除，状态不符返回 model.ErrCommentStatusChanged
	DeleteComment(ctx context.Context, commentID int64, status string) error
}

// ModerationLogDAO 审核日志数据访问接口
type ModerationLogDAO interface {
	CreateModerationLog(ctx context.Context, log *model.ModerationLog) error
	GetModerationLogs(ctx context.Context, commentID int64) ([]*model.ModerationLog, error)
}
