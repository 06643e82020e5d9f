package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"blog-moderation/api/rest"
	tracecontext "blog-moderation/pkg/context"
	"blog-moderation/pkg/logger"
	"blog-moderation/pkg/middleware"
	"blog-moderation/pkg/telemetry"
)

const commentsPath = "/api/v1/comments"

// HTTPCommentService 通过HTTP访问评论服务
type HTTPCommentService struct {
	baseURL string
	token   string
	client  *http.Client
	logger  logger.Logger
}

// NewHTTPCommentService 创建HTTP评论服务客户端，timeout<=0 时不设置超时
func NewHTTPCommentService(baseURL, token string, timeout time.Duration, log logger.Logger) *HTTPCommentService {
	return &HTTPCommentService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// ListComments 获取全部评论
func (s *HTTPCommentService) ListComments(ctx context.Context) ([]rest.Comment, error) {
	var resp rest.ListCommentsResponse
	if err := s.do(ctx, http.MethodGet, "list", "", commentsPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Comments == nil {
		return []rest.Comment{}, nil
	}
	return resp.Comments, nil
}

// GetComment 获取单条评论
func (s *HTTPCommentService) GetComment(ctx context.Context, id string) (*rest.Comment, error) {
	var resp rest.GetCommentResponse
	if err := s.do(ctx, http.MethodGet, "get", id, commentPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

// UpdateComment 局部更新评论
func (s *HTTPCommentService) UpdateComment(ctx context.Context, id string, patch rest.CommentPatch) (*rest.Comment, error) {
	var resp rest.UpdateCommentResponse
	if err := s.do(ctx, http.MethodPatch, "update", id, commentPath(id), patch, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

// DeleteComment 永久删除评论
func (s *HTTPCommentService) DeleteComment(ctx context.Context, id string) error {
	var resp rest.DeleteCommentResponse
	return s.do(ctx, http.MethodDelete, "delete", id, commentPath(id), nil, &resp)
}

func commentPath(id string) string {
	return commentsPath + "/" + url.PathEscape(id)
}

// do 发送请求并解析响应，失败统一转换为 *Error
func (s *HTTPCommentService) do(ctx context.Context, method, op, id, path string, body, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "comment.remote."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("comment.id", id),
	)

	err := s.roundTrip(ctx, method, op, id, path, body, out)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn(ctx, "Comment service call failed",
			logger.F("op", op),
			logger.F("commentID", id),
			logger.F("error", err.Error()))
	}
	return err
}

func (s *HTTPCommentService) roundTrip(ctx context.Context, method, op, id, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Domain: DomainTransport, Op: op, ID: id, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return &Error{Domain: DomainTransport, Op: op, ID: id, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := tracecontext.GetRequestID(ctx)
	if requestID == "" {
		requestID = tracecontext.GenerateRequestID()
	}
	req.Header.Set(middleware.HeaderRequestID, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Domain: DomainTransport, Op: op, ID: id, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Domain: DomainTransport, Op: op, ID: id, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var envelope rest.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &Error{
			Domain:     DomainTransport,
			Op:         op,
			ID:         id,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		domain := DomainTransport
		if envelope.Type == rest.ErrorTypeComment {
			domain = DomainComment
		}
		return &Error{
			Domain:     domain,
			Op:         op,
			ID:         id,
			StatusCode: resp.StatusCode,
			Message:    envelope.Message,
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{
				Domain:     DomainTransport,
				Op:         op,
				ID:         id,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("decode response: %w", err),
			}
		}
	}
	return nil
}

// tokenFor 优先使用调用方转发的 token
func (s *HTTPCommentService) tokenFor(ctx context.Context) string {
	if token := tokenFromContext(ctx); token != "" {
		return token
	}
	return s.token
}
