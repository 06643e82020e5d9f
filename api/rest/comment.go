package rest

import (
	"encoding/json"
	"fmt"
)

// CommentStatus 评论状态
type CommentStatus string

const (
	CommentStatusPublished CommentStatus = "published" // 已发布
	CommentStatusCensored  CommentStatus = "censored"  // 已屏蔽
)

// 旧版后台接口使用的状态码
const (
	legacyStatusPublished = "1"
	legacyStatusCensored  = "0"
)

// ErrorTypeComment 评论领域错误标识
const ErrorTypeComment = "comment"

// Valid 判断状态是否合法
func (s CommentStatus) Valid() bool {
	return s == CommentStatusPublished || s == CommentStatusCensored
}

// ParseCommentStatus 解析状态，兼容旧版 "1"/"0"
func ParseCommentStatus(raw string) (CommentStatus, error) {
	switch raw {
	case string(CommentStatusPublished), legacyStatusPublished:
		return CommentStatusPublished, nil
	case string(CommentStatusCensored), legacyStatusCensored:
		return CommentStatusCensored, nil
	default:
		return "", fmt.Errorf("unknown comment status %q", raw)
	}
}

// UnmarshalJSON 反序列化状态
func (s *CommentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("comment status must be a string: %w", err)
	}
	status, err := ParseCommentStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// PostSummary 评论所属文章摘要
type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AuthorSummary 评论作者摘要
type AuthorSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
}

// FullName 作者全名
func (a AuthorSummary) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Comment 评论
type Comment struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Post      PostSummary   `json:"post"`
	Author    AuthorSummary `json:"author"`
	Status    CommentStatus `json:"status"`
	IsRead    bool          `json:"isRead"`
	IsTop     bool          `json:"isTop"`
	CreatedAt int64         `json:"createdAt"`
	UpdatedAt int64         `json:"updatedAt"`
}

// CommentPatch 评论局部更新，只允许修改状态、已读、置顶
type CommentPatch struct {
	Status *CommentStatus `json:"status,omitempty"`
	IsRead *bool          `json:"isRead,omitempty"`
	IsTop  *bool          `json:"isTop,omitempty"`
}

// StatusPatch 构造状态更新
func StatusPatch(status CommentStatus) CommentPatch {
	return CommentPatch{Status: &status}
}

// ReadPatch 构造已读更新
func ReadPatch(isRead bool) CommentPatch {
	return CommentPatch{IsRead: &isRead}
}

// TopPatch 构造置顶更新
func TopPatch(isTop bool) CommentPatch {
	return CommentPatch{IsTop: &isTop}
}

// IsEmpty 是否没有任何字段
func (p CommentPatch) IsEmpty() bool {
	return p.Status == nil && p.IsRead == nil && p.IsTop == nil
}

// Validate 校验更新内容
func (p CommentPatch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("comment patch is empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("unknown comment status %q", *p.Status)
	}
	return nil
}

// ApplyTo 仅将 patch 中出现的字段写入 c
func (p CommentPatch) ApplyTo(c *Comment) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.IsRead != nil {
		c.IsRead = *p.IsRead
	}
	if p.IsTop != nil {
		c.IsTop = *p.IsTop
	}
}

// Merge 以 source 中的值覆盖 patch 涉及的字段，其余字段保持 c 原样
func (p CommentPatch) Merge(c *Comment, source *Comment) {
	if source == nil {
		p.ApplyTo(c)
		return
	}
	if p.Status != nil {
		c.Status = source.Status
	}
	if p.IsRead != nil {
		c.IsRead = source.IsRead
	}
	if p.IsTop != nil {
		c.IsTop = source.IsTop
	}
}

// CreateCommentRequest 创建评论请求（公开评论入口）
type CreateCommentRequest struct {
	Content string        `json:"content"`
	Post    PostSummary   `json:"post"`
	Author  AuthorSummary `json:"author"`
}

// ErrorResponse 通用失败响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ListCommentsResponse 评论列表响应
type ListCommentsResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Type     string    `json:"type,omitempty"`
	Comments []Comment `json:"comments"`
}

// GetCommentResponse 单条评论响应
type GetCommentResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Type    string   `json:"type,omitempty"`
	Comment *Comment `json:"comment,omitempty"`
}

// CreateCommentResponse 创建评论响应
type CreateCommentResponse = GetCommentResponse

// UpdateCommentResponse 更新评论响应
type UpdateCommentResponse = GetCommentResponse

// DeleteCommentResponse 删除评论响应
type DeleteCommentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

// ModerationLog 审核日志
type ModerationLog struct {
	CommentID   string `json:"commentId"`
	ModeratorID int64  `json:"moderatorId"`
	Action      string `json:"action"`
	OldStatus   string `json:"oldStatus,omitempty"`
	NewStatus   string `json:"newStatus,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// GetModerationLogsResponse 审核日志响应
type GetModerationLogsResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Type    string          `json:"type,omitempty"`
	Logs    []ModerationLog `json:"logs"`
}

// CommentEvent 评论事件（Kafka）
type CommentEvent struct {
	Type      string        `json:"type"`
	CommentID string        `json:"commentId"`
	PostID    string        `json:"postId"`
	Status    CommentStatus `json:"status"`
	IsTop     bool          `json:"isTop"`
	IsRead    bool          `json:"isRead"`
	Operator  int64         `json:"operator,omitempty"`
	Timestamp int64         `json:"timestamp"`
}
