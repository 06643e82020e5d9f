package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-admin/remote/remotetest"
	"blog-moderation/apps/comment-admin/store"
	"blog-moderation/apps/comment-admin/viewmodel"
	"blog-moderation/pkg/logger"
)

func setup(t *testing.T, comments ...rest.Comment) (*gin.Engine, *remotetest.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := remotetest.New(comments...)
	vm := viewmodel.New(store.New(svc))
	require.NoError(t, vm.Load(context.Background()))

	engine := gin.New()
	NewHTTPHandler(vm, logger.NewNopLogger()).RegisterRoutes(engine)
	return engine, svc
}

func call(t *testing.T, engine *gin.Engine, method, path string) (int, rest.ModerationViewResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp rest.ModerationViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestGetViewBuildsAdminRows(t *testing.T) {
	long := strings.Repeat("评", 60)
	engine, _ := setup(t,
		rest.Comment{
			ID:      "1",
			Content: long,
			Status:  rest.CommentStatusPublished,
			Post:    rest.PostSummary{ID: "p", Title: strings.Repeat("t", 45)},
			Author:  rest.AuthorSummary{FirstName: "Ada", LastName: "Lovelace", Avatar: "a.png"},
		},
		rest.Comment{ID: "2", Content: "short", Status: rest.CommentStatusCensored, IsRead: true},
	)

	code, resp := call(t, engine, http.MethodGet, "/api/v1/admin/comments")
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)

	view := resp.View
	require.NotNil(t, view)
	assert.True(t, view.Ready)
	assert.Equal(t, 1, view.PublishedCount)
	assert.Equal(t, 1, view.CensoredCount)

	row := view.Published[0]
	assert.Equal(t, strings.Repeat("评", 50)+"...", row.Excerpt)
	assert.Equal(t, strings.Repeat("t", 40)+"...", row.PostExcerpt)
	assert.Equal(t, "Ada Lovelace", row.AuthorName)
	assert.True(t, row.HasAvatar)
	assert.True(t, row.Highlighted)

	assert.Equal(t, "short", view.Censored[0].Excerpt)
	assert.False(t, view.Censored[0].Highlighted)
}

func TestModerationFlow(t *testing.T) {
	engine, svc := setup(t, rest.Comment{ID: "1", Status: rest.CommentStatusPublished})

	code, resp := call(t, engine, http.MethodPost, "/api/v1/admin/comments/1/top")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.View.Published[0].IsTop)

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/1/read")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.View.Published[0].Highlighted)

	code, _ = call(t, engine, http.MethodPost, "/api/v1/admin/comments/1/delete")
	assert.Equal(t, http.StatusConflict, code, "published comments cannot be deleted")

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/1/censor")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.View.CensoredCount)

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/1/delete")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.View.PendingDelete)
	assert.Equal(t, DeleteConfirmMessage, resp.View.PendingDelete.Message)
	assert.Equal(t, 0, svc.Calls(remotetest.OpDelete))

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/delete/confirm")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.View.PendingDelete)
	assert.Empty(t, resp.View.Censored)
	assert.Empty(t, svc.Comments())

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/delete/confirm")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, rest.ErrorTypeRequest, resp.Type)
}

func TestUnknownComment(t *testing.T) {
	engine, _ := setup(t)
	code, resp := call(t, engine, http.MethodPost, "/api/v1/admin/comments/42/censor")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, rest.ErrorTypeRequest, resp.Type)
	assert.False(t, resp.Success)
}

func TestCommentFailureShowsAlert(t *testing.T) {
	engine, svc := setup(t, rest.Comment{ID: "2", Status: rest.CommentStatusPublished})
	svc.Fail(remotetest.OpUpdate, errors.New("connection refused"))

	code, resp := call(t, engine, http.MethodPost, "/api/v1/admin/comments/2/censor")
	require.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, rest.ErrorTypeComment, resp.Type)
	assert.Equal(t, DefaultAlertMessage, resp.Message)
	require.NotNil(t, resp.View.Alert)
	assert.Equal(t, DefaultAlertMessage, resp.View.Alert.Message)
	assert.Equal(t, 1, resp.View.PublishedCount)

	code, resp = call(t, engine, http.MethodDelete, "/api/v1/admin/comments/error")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.View.Alert)
}

func TestCancelAndReload(t *testing.T) {
	engine, svc := setup(t, rest.Comment{ID: "5", Status: rest.CommentStatusCensored})

	code, _ := call(t, engine, http.MethodPost, "/api/v1/admin/comments/5/delete")
	require.Equal(t, http.StatusOK, code)
	code, resp := call(t, engine, http.MethodPost, "/api/v1/admin/comments/delete/cancel")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.View.PendingDelete)

	_, err := svc.UpdateComment(context.Background(), "5", rest.StatusPatch(rest.CommentStatusPublished))
	require.NoError(t, err)

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/5/refresh")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.View.PublishedCount)

	code, resp = call(t, engine, http.MethodPost, "/api/v1/admin/comments/reload")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, resp.View.CensoredCount)
}
