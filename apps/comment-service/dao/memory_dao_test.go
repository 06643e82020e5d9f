package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-moderation/apps/comment-service/model"
)

func TestMemoryCommentDAO(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryCommentDAO()

	require.NoError(t, d.CreateComment(ctx, &model.Comment{ID: 1, Content: "a", Status: model.CommentStatusPublished, CreatedAt: 100}))
	require.NoError(t, d.CreateComment(ctx, &model.Comment{ID: 2, Content: "b", Status: model.CommentStatusPublished, CreatedAt: 200}))
	require.NoError(t, d.CreateComment(ctx, &model.Comment{ID: 3, Content: "c", Status: model.CommentStatusPublished, CreatedAt: 200}))

	list, err := d.ListComments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})

	top := true
	updated, err := d.UpdateComment(ctx, 1, model.CommentUpdate{IsTop: &top})
	require.NoError(t, err)
	assert.True(t, updated.IsTop)
	assert.Equal(t, model.CommentStatusPublished, updated.Status)

	// 返回的是副本
	updated.Content = "mutated"
	got, err := d.GetComment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Content)

	// 状态不符时不删除
	assert.ErrorIs(t, d.DeleteComment(ctx, 1, model.CommentStatusCensored), model.ErrCommentStatusChanged)
	_, err = d.GetComment(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, d.DeleteComment(ctx, 1, model.CommentStatusPublished))
	_, err = d.GetComment(ctx, 1)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
	assert.ErrorIs(t, d.DeleteComment(ctx, 1, model.CommentStatusPublished), model.ErrCommentNotFound)
	_, err = d.UpdateComment(ctx, 1, model.CommentUpdate{IsTop: &top})
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}

func TestMemoryModerationLogDAO(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryModerationLogDAO()

	require.NoError(t, d.CreateModerationLog(ctx, &model.ModerationLog{CommentID: 1, Action: model.ActionCensor, CreatedAt: 1}))
	require.NoError(t, d.CreateModerationLog(ctx, &model.ModerationLog{CommentID: 2, Action: model.ActionPin, CreatedAt: 2}))
	require.NoError(t, d.CreateModerationLog(ctx, &model.ModerationLog{CommentID: 1, Action: model.ActionRestore, CreatedAt: 3}))

	logs, err := d.GetModerationLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionRestore, logs[0].Action)
	assert.Equal(t, model.ActionCensor, logs[1].Action)

	logs, err = d.GetModerationLogs(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
