package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"blog-moderation/api/rest"
)

// 错误领域
const (
	DomainComment   = rest.ErrorTypeComment // 评论服务拒绝了操作
	DomainTransport = "transport"           // 连接、编解码等与评论无关的失败
)

// CommentService 评论服务远程接口
type CommentService interface {
	ListComments(ctx context.Context) ([]rest.Comment, error)
	GetComment(ctx context.Context, id string) (*rest.Comment, error)
	UpdateComment(ctx context.Context, id string, patch rest.CommentPatch) (*rest.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Error 远程调用错误
type Error struct {
	Domain     string
	Op         string
	ID         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Domain, e.Op)
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 实现 httpx.StatusCoder，上游失败对外统一为 502
func (e *Error) HTTPStatus() int {
	return http.StatusBadGateway
}

// NotFound 评论不存在或已被删除
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsCommentError 判断是否为评论领域错误
func IsCommentError(err error) bool {
	var remoteErr *Error
	return errors.As(err, &remoteErr) && remoteErr.Domain == DomainComment
}

// AsError 提取 *Error
func AsError(err error) (*Error, bool) {
	var remoteErr *Error
	ok := errors.As(err, &remoteErr)
	return remoteErr, ok
}

// CommentError 把任意失败包装为评论领域错误，保留原始状态码和消息
func CommentError(op, id string, err error) *Error {
	if err == nil {
		return nil
	}
	if remoteErr, ok := AsError(err); ok {
		if remoteErr.Domain == DomainComment {
			return remoteErr
		}
		return &Error{
			Domain:     DomainComment,
			Op:         op,
			ID:         id,
			StatusCode: remoteErr.StatusCode,
			Err:        remoteErr,
		}
	}
	return &Error{Domain: DomainComment, Op: op, ID: id, Err: err}
}

type tokenKey struct{}

// WithToken 指定本次调用使用的 token（转发操作人身份）
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
