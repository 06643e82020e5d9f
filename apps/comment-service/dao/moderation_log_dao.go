package dao

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-moderation/apps/comment-service/model"
	"blog-moderation/pkg/database"
)

// ModerationLogCollection 审核日志集合名
const ModerationLogCollection = "comment_moderation_logs"

// moderationLogDAO 审核日志数据访问实现（MongoDB）
type moderationLogDAO struct {
	collection *mongo.Collection
}

// NewModerationLogDAO 创建审核日志DAO并确保索引
func NewModerationLogDAO(ctx context.Context, db *database.MongoDB) (ModerationLogDAO, error) {
	collection := db.GetCollection(ModerationLogCollection)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "comment_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create moderation log index: %w", err)
	}
	return &moderationLogDAO{collection: collection}, nil
}

// CreateModerationLog 写入审核日志
func (d *moderationLogDAO) CreateModerationLog(ctx context.Context, log *model.ModerationLog) error {
	if _, err := d.collection.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert moderation log: %w", err)
	}
	return nil
}

// GetModerationLogs 获取评论的审核日志，最新在前
func (d *moderationLogDAO) GetModerationLogs(ctx context.Context, commentID int64) ([]*model.ModerationLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := d.collection.Find(ctx, bson.M{"comment_id": commentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find moderation logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := make([]*model.ModerationLog, 0)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode moderation logs: %w", err)
	}
	return logs, nil
}
