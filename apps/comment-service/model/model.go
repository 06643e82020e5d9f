package model

import (
	"errors"
)

// ErrCommentNotFound 评论不存在
var ErrCommentNotFound = errors.New("comment not found")

// ErrCommentStatusChanged 条件删除时评论状态已被修改
var ErrCommentStatusChanged = errors.New("comment status changed")

// Comment 评论模型，文章与作者信息为冗余字段
type Comment struct {
	ID              int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Content         string `json:"content" gorm:"type:text;not null"`
	PostID          string `json:"post_id" gorm:"type:varchar(64);not null;index"`
	PostTitle       string `json:"post_title" gorm:"type:varchar(255)"`
	AuthorID        string `json:"author_id" gorm:"type:varchar(64);index"`
	AuthorFirstName string `json:"author_first_name" gorm:"type:varchar(100)"`
	AuthorLastName  string `json:"author_last_name" gorm:"type:varchar(100)"`
	AuthorEmail     string `json:"author_email" gorm:"type:varchar(255)"`
	AuthorAvatar    string `json:"author_avatar" gorm:"type:varchar(500)"`
	Status          string `json:"status" gorm:"type:varchar(20);not null;index;default:'published'"`
	IsRead          bool   `json:"is_read" gorm:"default:false"`
	IsTop           bool   `json:"is_top" gorm:"default:false;index"`
	CreatedAt       int64  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "blog_comments"
}

// IsCensored 是否已屏蔽
func (c *Comment) IsCensored() bool {
	return c.Status == CommentStatusCensored
}

// ModerationLog 评论审核日志（MongoDB）
type ModerationLog struct {
	CommentID   int64  `json:"comment_id" bson:"comment_id"`
	ModeratorID int64  `json:"moderator_id" bson:"moderator_id"`
	Action      string `json:"action" bson:"action"`
	OldStatus   string `json:"old_status,omitempty" bson:"old_status,omitempty"`
	NewStatus   string `json:"new_status,omitempty" bson:"new_status,omitempty"`
	CreatedAt   int64  `json:"created_at" bson:"created_at"`
}

// CommentUpdate 评论可修改字段，nil 表示不修改
type CommentUpdate struct {
	Status *string
	IsRead *bool
	IsTop  *bool
}

// IsEmpty 是否没有任何字段
func (u CommentUpdate) IsEmpty() bool {
	return u.Status == nil && u.IsRead == nil && u.IsTop == nil
}

// Columns 转换为 gorm Updates 使用的列映射
func (u CommentUpdate) Columns() map[string]interface{} {
	columns := make(map[string]interface{}, 3)
	if u.Status != nil {
		columns["status"] = *u.Status
	}
	if u.IsRead != nil {
		columns["is_read"] = *u.IsRead
	}
	if u.IsTop != nil {
		columns["is_top"] = *u.IsTop
	}
	return columns
}

// ApplyTo 写入评论
func (u CommentUpdate) ApplyTo(c *Comment) {
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.IsRead != nil {
		c.IsRead = *u.IsRead
	}
	if u.IsTop != nil {
		c.IsTop = *u.IsTop
	}
}

// CreateCommentParams 创建评论参数
type CreateCommentParams struct {
	PostID          string
	PostTitle       string
	AuthorID        string
	AuthorFirstName string
	AuthorLastName  string
	AuthorEmail     string
	AuthorAvatar    string
	Content         string
}
