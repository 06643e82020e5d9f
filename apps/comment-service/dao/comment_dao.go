package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"blog-moderation/apps/comment-service/model"
	"blog-moderation/pkg/database"
)

// commentDAO 评论数据访问实现（PostgreSQL）
type commentDAO struct {
	db *gorm.DB
}

// NewCommentDAO 创建评论DAO实例
func NewCommentDAO(pg *database.PostgreSQL) CommentDAO {
	return newGormCommentDAO(pg.GetDB())
}

func newGormCommentDAO(db *gorm.DB) *commentDAO {
	return &commentDAO{db: db}
}

// CreateComment 创建评论
func (d *commentDAO) CreateComment(ctx context.Context, comment *model.Comment) error {
	if err := d.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// GetComment 获取评论
func (d *commentDAO) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	var comment model.Comment
	err := d.db.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", commentID, err)
	}
	return &comment, nil
}

// ListComments 获取全部评论
func (d *commentDAO) ListComments(ctx context.Context) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// UpdateComment 在事务中修改并回读
func (d *commentDAO) UpdateComment(ctx context.Context, commentID int64, update model.CommentUpdate) (*model.Comment, error) {
	var comment model.Comment
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Comment{}).Where("id = ?", commentID).Updates(update.Columns())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrCommentNotFound
		}
		return tx.Where("id = ?", commentID).First(&comment).Error
	})
	if errors.Is(err, model.ErrCommentNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	return &comment, nil
}

// DeleteComment 按状态条件永久删除评论
func (d *commentDAO) DeleteComment(ctx context.Context, commentID int64, status string) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", commentID, status).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&model.Comment{}).Where("id = ?", commentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrCommentNotFound
		}
		return model.ErrCommentStatusChanged
	})
	if errors.Is(err, model.ErrCommentNotFound) || errors.Is(err, model.ErrCommentStatusChanged) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}
