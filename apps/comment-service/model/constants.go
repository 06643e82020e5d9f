package model

import "fmt"

// 评论状态常量
const (
	CommentStatusPublished = "published" // 已发布
	CommentStatusCensored  = "censored"  // 已屏蔽
)

// 评论内容限制（按字符计）
const (
	MaxCommentLength = 2000
	MinCommentLength = 1
)

// 缓存相关常量
const (
	CommentListVersionKey = "comment_list:version"
)

// CommentListCacheKey 列表缓存键带版本号，失效时只递增版本，旧版本键随TTL过期
func CommentListCacheKey(version int64) string {
	return fmt.Sprintf("comment_list:v%d", version)
}

// 事件类型常量
const (
	EventCommentCreated  = "comment.created"
	EventCommentCensored = "comment.censored"
	EventCommentRestored = "comment.restored"
	EventCommentPinned   = "comment.pinned"
	EventCommentUnpinned = "comment.unpinned"
	EventCommentRead     = "comment.read"
	EventCommentDeleted  = "comment.deleted"
)

// 审核动作常量
const (
	ActionCensor   = "censor"
	ActionRestore  = "restore"
	ActionPin      = "pin"
	ActionUnpin    = "unpin"
	ActionMarkRead = "mark_read"
	ActionDelete   = "delete"
)
