// Package remotetest 提供内存版评论服务，供后台各层测试使用
package remotetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-admin/remote"
)

// 操作名
const (
	OpList   = "list"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Service 内存评论服务，可按操作注入失败
type Service struct {
	mu       sync.Mutex
	comments []rest.Comment
	calls    map[string]int
	failures map[string]error
}

var _ remote.CommentService = (*Service)(nil)

// New 创建内存评论服务
func New(comments ...rest.Comment) *Service {
	s := &Service{
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
	s.comments = append(s.comments, comments...)
	return s
}

// Fail 之后的 op 调用都返回 err，直到 Recover
func (s *Service) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Recover 取消 op 的失败注入
func (s *Service) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// Calls 返回 op 被调用的次数
func (s *Service) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Comments 服务端当前数据
func (s *Service) Comments() []rest.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rest.Comment(nil), s.comments...)
}

func (s *Service) begin(op string) error {
	s.calls[op]++
	return s.failures[op]
}

func (s *Service) indexOf(id string) int {
	for i := range s.comments {
		if s.comments[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(op, id string) error {
	return &remote.Error{
		Domain:     remote.DomainComment,
		Op:         op,
		ID:         id,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("comment %s not found", id),
	}
}

// ListComments 实现 remote.CommentService
func (s *Service) ListComments(ctx context.Context) ([]rest.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpList); err != nil {
		return nil, err
	}
	return append([]rest.Comment{}, s.comments...), nil
}

// GetComment 实现 remote.CommentService
func (s *Service) GetComment(ctx context.Context, id string) (*rest.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpGet); err != nil {
		return nil, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil, notFound(OpGet, id)
	}
	comment := s.comments[i]
	return &comment, nil
}

// UpdateComment 实现 remote.CommentService，每次成功更新 UpdatedAt 加一
func (s *Service) UpdateComment(ctx context.Context, id string, patch rest.CommentPatch) (*rest.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpUpdate); err != nil {
		return nil, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil, notFound(OpUpdate, id)
	}
	patch.ApplyTo(&s.comments[i])
	s.comments[i].UpdatedAt++
	comment := s.comments[i]
	return &comment, nil
}

// DeleteComment 实现 remote.CommentService，只能删除已屏蔽的评论
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpDelete); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return notFound(OpDelete, id)
	}
	if s.comments[i].Status != rest.CommentStatusCensored {
		return &remote.Error{
			Domain:     remote.DomainComment,
			Op:         OpDelete,
			ID:         id,
			StatusCode: http.StatusConflict,
			Message:    "comment must be censored before permanent deletion",
		}
	}
	s.comments = append(s.comments[:i], s.comments[i+1:]...)
	return nil
}
