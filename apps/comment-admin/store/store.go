package store

import (
	"context"
	"net/http"
	"sync"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-admin/remote"
)

// Store 评论本地副本，保存最近一次拉取的全部评论和最近一次操作的错误
type Store struct {
	svc remote.CommentService

	mu        sync.RWMutex
	comments  []rest.Comment
	loaded    bool
	err       *remote.Error
	listeners []func()
}

// New 创建评论Store
func New(svc remote.CommentService) *Store {
	return &Store{svc: svc}
}

// FetchAll 全量拉取并替换本地集合，失败时集合保持不变
func (s *Store) FetchAll(ctx context.Context) error {
	comments, err := s.svc.ListComments(ctx)

	s.mu.Lock()
	if err != nil {
		s.err = remote.CommentError("list", "", err)
	} else {
		s.comments = dedupe(comments)
		s.loaded = true
		s.err = nil
	}
	recorded := s.err
	s.mu.Unlock()

	s.notify()
	return asError(recorded)
}

// Update 局部更新评论，成功后只合并 patch 涉及的字段
func (s *Store) Update(ctx context.Context, id string, patch rest.CommentPatch) error {
	if err := patch.Validate(); err != nil {
		return s.record(&remote.Error{
			Domain:     remote.DomainComment,
			Op:         "update",
			ID:         id,
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		})
	}

	updated, err := s.svc.UpdateComment(ctx, id, patch)

	s.mu.Lock()
	if err != nil {
		s.err = remote.CommentError("update", id, err)
	} else {
		if i := s.indexOf(id); i >= 0 {
			patch.Merge(&s.comments[i], updated)
		}
		s.err = nil
	}
	recorded := s.err
	s.mu.Unlock()

	s.notify()
	return asError(recorded)
}

// Delete 永久删除评论，成功后从本地集合移除
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.svc.DeleteComment(ctx, id)

	s.mu.Lock()
	if err != nil {
		s.err = remote.CommentError("delete", id, err)
	} else {
		if i := s.indexOf(id); i >= 0 {
			s.comments = append(s.comments[:i:i], s.comments[i+1:]...)
		}
		s.err = nil
	}
	recorded := s.err
	s.mu.Unlock()

	s.notify()
	return asError(recorded)
}

// Refresh 重新获取单条评论并原位替换，本地没有时追加到末尾
func (s *Store) Refresh(ctx context.Context, id string) error {
	comment, err := s.svc.GetComment(ctx, id)
	if err == nil && comment == nil {
		err = &remote.Error{Domain: remote.DomainComment, Op: "get", ID: id, StatusCode: http.StatusNotFound}
	}

	s.mu.Lock()
	if err != nil {
		s.err = remote.CommentError("get", id, err)
	} else {
		if i := s.indexOf(id); i >= 0 {
			s.comments[i] = *comment
		} else {
			s.comments = append(s.comments, *comment)
		}
		s.err = nil
	}
	recorded := s.err
	s.mu.Unlock()

	s.notify()
	return asError(recorded)
}

// ClearError 清除记录的错误，不影响集合
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// Comments 返回集合副本，保持插入顺序
func (s *Store) Comments() []rest.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.comments == nil {
		return nil
	}
	return append([]rest.Comment{}, s.comments...)
}

// Find 按ID查找评论
func (s *Store) Find(id string) (rest.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.comments[i], true
	}
	return rest.Comment{}, false
}

// Loaded 是否至少成功拉取过一次
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err 最近一次操作记录的错误
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return asError(s.err)
}

// OnChange 注册变更监听，每次操作结束后在锁外同步调用
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) record(err *remote.Error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.notify()
	return asError(err)
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// indexOf 调用方需持有锁
func (s *Store) indexOf(id string) int {
	for i := range s.comments {
		if s.comments[i].ID == id {
			return i
		}
	}
	return -1
}

// dedupe 按ID去重，保留第一次出现的位置
func dedupe(comments []rest.Comment) []rest.Comment {
	result := make([]rest.Comment, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		result = append(result, c)
	}
	return result
}

func asError(err *remote.Error) error {
	if err == nil {
		return nil
	}
	return err
}
