package converter

import (
	"strconv"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-service/model"
	"blog-moderation/apps/comment-service/service"
)

// Converter 转换器，提供Model到REST对象的转换
type Converter struct{}

// NewConverter 创建转换器实例
func NewConverter() *Converter {
	return &Converter{}
}

// CommentModelToRest 将评论Model转换为REST对象
func (c *Converter) CommentModelToRest(comment *model.Comment) *rest.Comment {
	if comment == nil {
		return nil
	}

	return &rest.Comment{
		ID:      strconv.FormatInt(comment.ID, 10),
		Content: comment.Content,
		Post: rest.PostSummary{
			ID:    comment.PostID,
			Title: comment.PostTitle,
		},
		Author: rest.AuthorSummary{
			ID:        comment.AuthorID,
			FirstName: comment.AuthorFirstName,
			LastName:  comment.AuthorLastName,
			Email:     comment.AuthorEmail,
			Avatar:    comment.AuthorAvatar,
		},
		Status:    rest.CommentStatus(comment.Status),
		IsRead:    comment.IsRead,
		IsTop:     comment.IsTop,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// CommentModelsToRest 将评论Model列表转换为REST列表
func (c *Converter) CommentModelsToRest(comments []*model.Comment) []rest.Comment {
	result := make([]rest.Comment, 0, len(comments))
	for _, comment := range comments {
		if r := c.CommentModelToRest(comment); r != nil {
			result = append(result, *r)
		}
	}
	return result
}

// CreateParamsFromRest 创建请求转换为参数
func (c *Converter) CreateParamsFromRest(req *rest.CreateCommentRequest) *model.CreateCommentParams {
	return &model.CreateCommentParams{
		PostID:          req.Post.ID,
		PostTitle:       req.Post.Title,
		AuthorID:        req.Author.ID,
		AuthorFirstName: req.Author.FirstName,
		AuthorLastName:  req.Author.LastName,
		AuthorEmail:     req.Author.Email,
		AuthorAvatar:    req.Author.Avatar,
		Content:         req.Content,
	}
}

// ModerationLogsToRest 审核日志转换
func (c *Converter) ModerationLogsToRest(logs []*model.ModerationLog) []rest.ModerationLog {
	result := make([]rest.ModerationLog, 0, len(logs))
	for _, log := range logs {
		result = append(result, rest.ModerationLog{
			CommentID:   strconv.FormatInt(log.CommentID, 10),
			ModeratorID: log.ModeratorID,
			Action:      log.Action,
			OldStatus:   log.OldStatus,
			NewStatus:   log.NewStatus,
			CreatedAt:   log.CreatedAt,
		})
	}
	return result
}

// BuildListCommentsResponse 构建评论列表响应
func (c *Converter) BuildListCommentsResponse(comments []*model.Comment, err error) *rest.ListCommentsResponse {
	if err != nil {
		return &rest.ListCommentsResponse{Success: false, Type: rest.ErrorTypeComment, Message: service.PublicMessage(err), Comments: []rest.Comment{}}
	}
	return &rest.ListCommentsResponse{Success: true, Comments: c.CommentModelsToRest(comments)}
}

// BuildCommentResponse 构建单条评论响应（获取、创建、更新共用）
func (c *Converter) BuildCommentResponse(comment *model.Comment, err error) *rest.GetCommentResponse {
	if err != nil {
		return &rest.GetCommentResponse{Success: false, Type: rest.ErrorTypeComment, Message: service.PublicMessage(err)}
	}
	return &rest.GetCommentResponse{Success: true, Comment: c.CommentModelToRest(comment)}
}

// BuildDeleteCommentResponse 构建删除响应
func (c *Converter) BuildDeleteCommentResponse(err error) *rest.DeleteCommentResponse {
	if err != nil {
		return &rest.DeleteCommentResponse{Success: false, Type: rest.ErrorTypeComment, Message: service.PublicMessage(err)}
	}
	return &rest.DeleteCommentResponse{Success: true, Message: "comment deleted"}
}

// BuildModerationLogsResponse 构建审核日志响应
func (c *Converter) BuildModerationLogsResponse(logs []*model.ModerationLog, err error) *rest.GetModerationLogsResponse {
	if err != nil {
		return &rest.GetModerationLogsResponse{Success: false, Type: rest.ErrorTypeComment, Message: service.PublicMessage(err), Logs: []rest.ModerationLog{}}
	}
	return &rest.GetModerationLogsResponse{Success: true, Logs: c.ModerationLogsToRest(logs)}
}
