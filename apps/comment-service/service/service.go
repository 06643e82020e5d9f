package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-service/dao"
	"blog-moderation/apps/comment-service/model"
	tracecontext "blog-moderation/pkg/context"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/redis"
	"blog-moderation/pkg/telemetry"
	"blog-moderation/pkg/utils"
)

// Cache 列表缓存，*redis.RedisClient 满足该接口
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt64(ctx context.Context, key string) (int64, error)
}

// EventPublisher 事件发布，*kafka.Producer 满足该接口
type EventPublisher interface {
	PublishMessage(ctx context.Context, topic, key string, v interface{}) error
}

// IDGenerator ID生成器，*snowflake.Snowflake 满足该接口
type IDGenerator interface {
	Generate() (int64, error)
}

// Options 服务可选依赖，为空时对应功能关闭
type Options struct {
	Cache     Cache
	CacheTTL  time.Duration
	Publisher EventPublisher
	Topic     string
	LogDAO    dao.ModerationLogDAO
}

// Service 评论服务
type Service struct {
	dao       dao.CommentDAO
	logDAO    dao.ModerationLogDAO
	ids       IDGenerator
	cache     Cache
	cacheTTL  time.Duration
	publisher EventPublisher
	topic     string
	logger    logger.Logger
}

// NewService 创建评论服务实例
func NewService(commentDAO dao.CommentDAO, ids IDGenerator, log logger.Logger, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Topic == "" {
		opts.Topic = "comment-events"
	}
	return &Service{
		dao:       commentDAO,
		logDAO:    opts.LogDAO,
		ids:       ids,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		publisher: opts.Publisher,
		topic:     opts.Topic,
		logger:    log,
	}
}

// ListComments 获取全部评论，优先读缓存
func (s *Service) ListComments(ctx context.Context) ([]*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.ListComments")
	defer span.End()

	// 读取前先确定版本，期间发生失效时回写只落到旧版本键
	var cacheKey string
	if s.cache != nil {
		version, err := s.cache.GetInt64(ctx, model.CommentListVersionKey)
		if err != nil {
			s.logger.Warn(ctx, "Read comment list version failed", logger.F("error", err.Error()))
		} else {
			cacheKey = model.CommentListCacheKey(version)
			var cached []*model.Comment
			err := s.cache.GetJSON(ctx, cacheKey, &cached)
			if err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return cached, nil
			}
			if !errors.Is(err, redis.ErrCacheMiss) {
				s.logger.Warn(ctx, "Read comment list cache failed", logger.F("error", err.Error()))
			}
		}
	}

	comments, err := s.dao.ListComments(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errInternal("failed to list comments", err)
	}
	span.SetAttributes(attribute.Int("comment.count", len(comments)))

	if cacheKey != "" {
		if err := s.cache.SetJSON(ctx, cacheKey, comments, s.cacheTTL); err != nil {
			s.logger.Warn(ctx, "Write comment list cache failed", logger.F("error", err.Error()))
		}
	}
	return comments, nil
}

// GetComment 获取单条评论
func (s *Service) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.GetComment")
	defer span.End()
	span.SetAttributes(attribute.String("comment.id", id))

	comment, err := s.load(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return comment, nil
}

// CreateComment 创建评论（公开评论入口），新评论默认已发布、未读
func (s *Service) CreateComment(ctx context.Context, params *model.CreateCommentParams) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.CreateComment")
	defer span.End()

	content := strings.TrimSpace(params.Content)
	length := utf8.RuneCountInString(content)
	span.SetAttributes(
		attribute.String("comment.post_id", params.PostID),
		attribute.Int("comment.content_length", length),
	)

	if length < model.MinCommentLength {
		return nil, errBadRequest("comment content must not be empty")
	}
	if length > model.MaxCommentLength {
		return nil, errBadRequest("comment content too long, at most %d characters", model.MaxCommentLength)
	}
	if strings.TrimSpace(params.PostID) == "" {
		return nil, errBadRequest("post id is required")
	}

	id, err := s.ids.Generate()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errInternal("failed to generate comment id", err)
	}

	now := utils.GetCurrentTimestamp()
	comment := &model.Comment{
		ID:              id,
		Content:         content,
		PostID:          params.PostID,
		PostTitle:       params.PostTitle,
		AuthorID:        params.AuthorID,
		AuthorFirstName: params.AuthorFirstName,
		AuthorLastName:  params.AuthorLastName,
		AuthorEmail:     params.AuthorEmail,
		AuthorAvatar:    params.AuthorAvatar,
		Status:          model.CommentStatusPublished,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.dao.CreateComment(ctx, comment); err != nil {
		telemetry.RecordError(span, err)
		return nil, errInternal("failed to create comment", err)
	}
	span.SetAttributes(attribute.Int64("comment.id", comment.ID))

	s.invalidateList(ctx)
	s.publishEvent(ctx, model.EventCommentCreated, comment)

	s.logger.Info(ctx, "Comment created",
		logger.F("commentID", comment.ID),
		logger.F("postID", comment.PostID))
	return comment, nil
}

// PatchComment 修改评论状态、已读、置顶
func (s *Service) PatchComment(ctx context.Context, id string, patch rest.CommentPatch, operatorID int64) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.PatchComment")
	defer span.End()
	span.SetAttributes(attribute.String("comment.id", id))
	ctx = tracecontext.WithCommentID(ctx, id)

	if err := patch.Validate(); err != nil {
		return nil, errBadRequest("%s", err.Error())
	}

	before, err := s.load(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	update := model.CommentUpdate{IsRead: patch.IsRead, IsTop: patch.IsTop}
	if patch.Status != nil {
		status := string(*patch.Status)
		update.Status = &status
	}

	after, err := s.dao.UpdateComment(ctx, before.ID, update)
	if errors.Is(err, model.ErrCommentNotFound) {
		return nil, errNotFound(id)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errInternal("failed to update comment", err)
	}

	s.invalidateList(ctx)
	s.recordChanges(ctx, before, after, operatorID)

	s.logger.Info(ctx, "Comment updated",
		logger.F("commentID", after.ID),
		logger.F("status", after.Status),
		logger.F("isTop", after.IsTop),
		logger.F("isRead", after.IsRead))
	return after, nil
}

// DeleteComment 永久删除，只允许删除已屏蔽的评论
func (s *Service) DeleteComment(ctx context.Context, id string, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.DeleteComment")
	defer span.End()
	span.SetAttributes(attribute.String("comment.id", id))
	ctx = tracecontext.WithCommentID(ctx, id)

	comment, err := s.load(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !comment.IsCensored() {
		err := errConflict("comment %s must be censored before permanent deletion", id)
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.dao.DeleteComment(ctx, comment.ID, model.CommentStatusCensored); err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			return errNotFound(id)
		}
		if errors.Is(err, model.ErrCommentStatusChanged) {
			err := errConflict("comment %s was restored before deletion", id)
			telemetry.RecordError(span, err)
			return err
		}
		telemetry.RecordError(span, err)
		return errInternal("failed to delete comment", err)
	}

	s.invalidateList(ctx)
	s.publishEvent(ctx, model.EventCommentDeleted, comment)
	s.writeLog(ctx, &model.ModerationLog{
		CommentID:   comment.ID,
		ModeratorID: operatorID,
		Action:      model.ActionDelete,
		OldStatus:   comment.Status,
	})

	s.logger.Info(ctx, "Comment deleted permanently", logger.F("commentID", comment.ID))
	return nil
}

// GetModerationLogs 获取评论审核日志
func (s *Service) GetModerationLogs(ctx context.Context, id string) ([]*model.ModerationLog, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.GetModerationLogs")
	defer span.End()

	commentID, ok := parseID(id)
	if !ok {
		return nil, errNotFound(id)
	}
	if s.logDAO == nil {
		return []*model.ModerationLog{}, nil
	}
	logs, err := s.logDAO.GetModerationLogs(ctx, commentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errInternal("failed to get moderation logs", err)
	}
	return logs, nil
}

// load 解析ID并读取评论
func (s *Service) load(ctx context.Context, id string) (*model.Comment, error) {
	commentID, ok := parseID(id)
	if !ok {
		return nil, errNotFound(id)
	}
	comment, err := s.dao.GetComment(ctx, commentID)
	if errors.Is(err, model.ErrCommentNotFound) {
		return nil, errNotFound(id)
	}
	if err != nil {
		return nil, errInternal("failed to get comment", err)
	}
	return comment, nil
}

// parseID 非数字ID视为不存在
func parseID(id string) (int64, bool) {
	commentID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || commentID <= 0 {
		return 0, false
	}
	return commentID, true
}

// recordChanges 针对实际变化的字段发布事件并写审核日志
func (s *Service) recordChanges(ctx context.Context, before, after *model.Comment, operatorID int64) {
	if before.Status != after.Status {
		event, action := model.EventCommentRestored, model.ActionRestore
		if after.IsCensored() {
			event, action = model.EventCommentCensored, model.ActionCensor
		}
		s.publishEvent(ctx, event, after)
		s.writeLog(ctx, &model.ModerationLog{
			CommentID:   after.ID,
			ModeratorID: operatorID,
			Action:      action,
			OldStatus:   before.Status,
			NewStatus:   after.Status,
		})
	}
	if before.IsTop != after.IsTop {
		event, action := model.EventCommentUnpinned, model.ActionUnpin
		if after.IsTop {
			event, action = model.EventCommentPinned, model.ActionPin
		}
		s.publishEvent(ctx, event, after)
		s.writeLog(ctx, &model.ModerationLog{CommentID: after.ID, ModeratorID: operatorID, Action: action})
	}
	if !before.IsRead && after.IsRead {
		s.publishEvent(ctx, model.EventCommentRead, after)
		s.writeLog(ctx, &model.ModerationLog{CommentID: after.ID, ModeratorID: operatorID, Action: model.ActionMarkRead})
	}
}

// invalidateList 递增列表版本使缓存失效
func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, model.CommentListVersionKey); err != nil {
		s.logger.Warn(ctx, "Invalidate comment list cache failed", logger.F("error", err.Error()))
	}
}

// publishEvent 发送评论事件，失败只记录日志
func (s *Service) publishEvent(ctx context.Context, eventType string, comment *model.Comment) {
	if s.publisher == nil {
		return
	}

	event := &rest.CommentEvent{
		Type:      eventType,
		CommentID: strconv.FormatInt(comment.ID, 10),
		PostID:    comment.PostID,
		Status:    rest.CommentStatus(comment.Status),
		IsTop:     comment.IsTop,
		IsRead:    comment.IsRead,
		Operator:  tracecontext.GetUserID(ctx),
		Timestamp: time.Now().Unix(),
	}

	if err := s.publisher.PublishMessage(ctx, s.topic, event.CommentID, event); err != nil {
		trace.SpanFromContext(ctx).AddEvent("publish failed")
		s.logger.Error(ctx, "Failed to publish event",
			logger.F("eventType", eventType),
			logger.F("commentID", comment.ID),
			logger.F("error", err.Error()))
	}
}

// writeLog 写审核日志，失败只记录日志
func (s *Service) writeLog(ctx context.Context, entry *model.ModerationLog) {
	if s.logDAO == nil {
		return
	}
	entry.CreatedAt = time.Now().Unix()
	if err := s.logDAO.CreateModerationLog(ctx, entry); err != nil {
		s.logger.Error(ctx, "Failed to write moderation log",
			logger.F("commentID", entry.CommentID),
			logger.F("action", entry.Action),
			logger.F("error", err.Error()))
	}
}
