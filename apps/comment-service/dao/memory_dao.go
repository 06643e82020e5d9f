package dao

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-moderation/apps/comment-service/model"
)

// memoryCommentDAO 内存实现，用于 STORAGE=memory 和测试
type memoryCommentDAO struct {
	mu       sync.RWMutex
	comments map[int64]*model.Comment
}

// NewMemoryCommentDAO 创建内存评论DAO
func NewMemoryCommentDAO() CommentDAO {
	return &memoryCommentDAO{comments: make(map[int64]*model.Comment)}
}

func (d *memoryCommentDAO) CreateComment(ctx context.Context, comment *model.Comment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().Unix()
	if comment.CreatedAt == 0 {
		comment.CreatedAt = now
	}
	if comment.UpdatedAt == 0 {
		comment.UpdatedAt = comment.CreatedAt
	}
	copied := *comment
	d.comments[comment.ID] = &copied
	return nil
}

func (d *memoryCommentDAO) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	comment, ok := d.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	copied := *comment
	return &copied, nil
}

func (d *memoryCommentDAO) ListComments(ctx context.Context) ([]*model.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Comment, 0, len(d.comments))
	for _, comment := range d.comments {
		copied := *comment
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (d *memoryCommentDAO) UpdateComment(ctx context.Context, commentID int64, update model.CommentUpdate) (*model.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	comment, ok := d.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	update.ApplyTo(comment)
	comment.UpdatedAt = time.Now().Unix()
	copied := *comment
	return &copied, nil
}

func (d *memoryCommentDAO) DeleteComment(ctx context.Context, commentID int64, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	comment, ok := d.comments[commentID]
	if !ok {
		return model.ErrCommentNotFound
	}
	if comment.Status != status {
		return model.ErrCommentStatusChanged
	}
	delete(d.comments, commentID)
	return nil
}

// memoryModerationLogDAO 内存审核日志
type memoryModerationLogDAO struct {
	mu   sync.RWMutex
	logs []*model.ModerationLog
}

// NewMemoryModerationLogDAO 创建内存审核日志DAO
func NewMemoryModerationLogDAO() ModerationLogDAO {
	return &memoryModerationLogDAO{}
}

func (d *memoryModerationLogDAO) CreateModerationLog(ctx context.Context, log *model.ModerationLog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *log
	d.logs = append(d.logs, &copied)
	return nil
}

func (d *memoryModerationLogDAO) GetModerationLogs(ctx context.Context, commentID int64) ([]*model.ModerationLog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.ModerationLog, 0)
	for i := len(d.logs) - 1; i >= 0; i-- {
		if d.logs[i].CommentID == commentID {
			copied := *d.logs[i]
			result = append(result, &copied)
		}
	}
	return result, nil
}
