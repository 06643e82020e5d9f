package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-moderation/api/rest"
	tracecontext "blog-moderation/pkg/context"
	"blog-moderation/pkg/logger"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *HTTPCommentService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPCommentService(server.URL+"/", "service-token", time.Second, logger.NewNopLogger())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListCommentsSendsHeaders(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/comments", r.URL.Path)
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, rest.ListCommentsResponse{
			Success:  true,
			Comments: []rest.Comment{{ID: "1", Status: rest.CommentStatusPublished}, {ID: "2", Status: rest.CommentStatusCensored}},
		})
	})

	ctx := tracecontext.WithRequestID(context.Background(), "req-1")
	comments, err := svc.ListComments(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0].ID)
	assert.Equal(t, rest.CommentStatusCensored, comments[1].Status)
}

func TestUpdateCommentForwardsToken(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/comments/7", r.URL.Path)
		assert.Equal(t, "Bearer operator", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"isTop":true}`, string(body))

		writeJSON(w, http.StatusOK, rest.UpdateCommentResponse{
			Success: true,
			Comment: &rest.Comment{ID: "7", IsTop: true, UpdatedAt: 99},
		})
	})

	ctx := WithToken(context.Background(), "operator")
	comment, err := svc.UpdateComment(ctx, "7", rest.TopPatch(true))
	require.NoError(t, err)
	assert.True(t, comment.IsTop)
	assert.Equal(t, int64(99), comment.UpdatedAt)
}

func TestCommentDomainFailure(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, rest.ErrorResponse{Success: false, Type: rest.ErrorTypeComment, Message: "comment 9 not found"})
	})

	err := svc.DeleteComment(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, IsCommentError(err))

	remoteErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, remoteErr.NotFound())
	assert.Equal(t, "delete", remoteErr.Op)
	assert.Equal(t, "comment 9 not found", remoteErr.Message)
}

func TestTransportFailures(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := svc.GetComment(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, IsCommentError(err))
	remoteErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, DomainTransport, remoteErr.Domain)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)

	unreachable := NewHTTPCommentService("http://127.0.0.1:1", "", 200*time.Millisecond, logger.NewNopLogger())
	_, err = unreachable.ListComments(context.Background())
	require.Error(t, err)
	assert.False(t, IsCommentError(err))
}

func TestCommentErrorWrapping(t *testing.T) {
	assert.Nil(t, CommentError("update", "1", nil))

	transport := &Error{Domain: DomainTransport, Op: "update", ID: "1", StatusCode: http.StatusUnauthorized}
	wrapped := CommentError("update", "1", transport)
	assert.True(t, IsCommentError(wrapped))
	assert.Equal(t, http.StatusUnauthorized, wrapped.StatusCode)
	assert.ErrorIs(t, wrapped, transport)

	domain := &Error{Domain: DomainComment, Op: "delete", ID: "2", Message: "x"}
	assert.Same(t, domain, CommentError("delete", "2", domain))
}
