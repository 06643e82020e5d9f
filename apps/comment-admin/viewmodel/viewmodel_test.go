package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-moderation/api/rest"
	"blog-moderation/apps/comment-admin/remote"
	"blog-moderation/apps/comment-admin/remote/remotetest"
	"blog-moderation/apps/comment-admin/store"
)

func comment(id string, status rest.CommentStatus) rest.Comment {
	return rest.Comment{ID: id, Content: "content " + id, Status: status}
}

func setup(t *testing.T, comments ...rest.Comment) (*ViewModel, *remotetest.Service) {
	t.Helper()
	svc := remotetest.New(comments...)
	vm := New(store.New(svc))
	require.NoError(t, vm.Load(context.Background()))
	return vm, svc
}

func ids(comments []rest.Comment) []string {
	result := make([]string, 0, len(comments))
	for _, c := range comments {
		result = append(result, c.ID)
	}
	return result
}

func mustFind(t *testing.T, vm *ViewModel, id string) rest.Comment {
	t.Helper()
	c, ok := vm.Find(id)
	require.True(t, ok, "comment %s", id)
	return c
}

func TestNotReadyUntilFirstFetch(t *testing.T) {
	svc := remotetest.New(comment("1", rest.CommentStatusPublished))
	svc.Fail(remotetest.OpList, errors.New("offline"))
	vm := New(store.New(svc))

	view := vm.Snapshot()
	assert.False(t, view.Ready)
	assert.Nil(t, view.Published)

	require.Error(t, vm.Load(context.Background()))
	view = vm.Snapshot()
	assert.False(t, view.Ready, "a failed fetch leaves the view blocked, not empty")
	assert.True(t, remote.IsCommentError(view.Err))

	svc.Recover(remotetest.OpList)
	require.NoError(t, vm.Load(context.Background()))
	view = vm.Snapshot()
	assert.True(t, view.Ready)
	assert.NoError(t, view.Err)
	assert.Equal(t, []string{"1"}, ids(view.Published))
	assert.NotNil(t, view.Censored)
}

func TestPartitionIsStrict(t *testing.T) {
	comments := []rest.Comment{
		comment("1", rest.CommentStatusPublished),
		comment("2", rest.CommentStatusCensored),
		comment("3", rest.CommentStatusPublished),
		comment("4", rest.CommentStatusCensored),
	}
	published, censored := Partition(comments)

	assert.Equal(t, []string{"1", "3"}, ids(published))
	assert.Equal(t, []string{"2", "4"}, ids(censored))
	assert.ElementsMatch(t, ids(comments), append(ids(published), ids(censored)...))

	published, censored = Partition(nil)
	assert.Empty(t, published)
	assert.Empty(t, censored)
}

func TestToggleTopTwiceRestoresValue(t *testing.T) {
	vm, svc := setup(t, comment("1", rest.CommentStatusPublished))

	require.NoError(t, vm.ToggleTop(context.Background(), mustFind(t, vm, "1")))
	assert.True(t, mustFind(t, vm, "1").IsTop)

	require.NoError(t, vm.ToggleTop(context.Background(), mustFind(t, vm, "1")))
	assert.False(t, mustFind(t, vm, "1").IsTop)
	assert.Equal(t, 2, svc.Calls(remotetest.OpUpdate))
}

func TestMarkReadOnExpandIsIdempotent(t *testing.T) {
	vm, svc := setup(t, comment("1", rest.CommentStatusPublished))
	stale := mustFind(t, vm, "1")

	require.NoError(t, vm.MarkReadOnExpand(context.Background(), stale))
	require.NoError(t, vm.MarkReadOnExpand(context.Background(), stale))
	require.NoError(t, vm.MarkReadOnExpand(context.Background(), mustFind(t, vm, "1")))

	assert.Equal(t, 1, svc.Calls(remotetest.OpUpdate))
	assert.True(t, mustFind(t, vm, "1").IsRead)
}

func TestCensorAndRestoreMoveBetweenSets(t *testing.T) {
	vm, _ := setup(t, comment("1", rest.CommentStatusPublished), comment("2", rest.CommentStatusPublished))

	require.NoError(t, vm.Censor(context.Background(), mustFind(t, vm, "1")))
	view := vm.Snapshot()
	assert.Equal(t, []string{"2"}, ids(view.Published))
	assert.Equal(t, []string{"1"}, ids(view.Censored))

	require.NoError(t, vm.Restore(context.Background(), mustFind(t, vm, "1")))
	view = vm.Snapshot()
	assert.Equal(t, []string{"1", "2"}, ids(view.Published), "store order is preserved")
	assert.Empty(t, view.Censored)
}

func TestConfirmWithoutRequestIsNoop(t *testing.T) {
	vm, svc := setup(t, comment("5", rest.CommentStatusCensored))
	before := vm.Snapshot()

	require.NoError(t, vm.ConfirmPermanentDelete(context.Background()))
	assert.Equal(t, 0, svc.Calls(remotetest.OpDelete))
	assert.Equal(t, before, vm.Snapshot())
}

func TestRequestDeleteRequiresCensored(t *testing.T) {
	vm, _ := setup(t, comment("1", rest.CommentStatusPublished))

	assert.ErrorIs(t, vm.RequestPermanentDelete("1"), ErrNotDeletable)
	assert.ErrorIs(t, vm.RequestPermanentDelete("missing"), ErrNotDeletable)
	_, pending := vm.PendingDelete()
	assert.False(t, pending)
}

func TestCancelPermanentDelete(t *testing.T) {
	vm, svc := setup(t, comment("5", rest.CommentStatusCensored))

	require.NoError(t, vm.RequestPermanentDelete("5"))
	assert.Equal(t, "5", vm.Snapshot().PendingDelete)

	vm.CancelPermanentDelete()
	assert.Empty(t, vm.Snapshot().PendingDelete)
	require.NoError(t, vm.ConfirmPermanentDelete(context.Background()))
	assert.Equal(t, 0, svc.Calls(remotetest.OpDelete))
}

func TestFailedDeleteStaysPending(t *testing.T) {
	vm, svc := setup(t, comment("5", rest.CommentStatusCensored))
	require.NoError(t, vm.RequestPermanentDelete("5"))

	svc.Fail(remotetest.OpDelete, errors.New("timeout"))
	require.Error(t, vm.ConfirmPermanentDelete(context.Background()))
	view := vm.Snapshot()
	assert.Equal(t, "5", view.PendingDelete)
	assert.Equal(t, []string{"5"}, ids(view.Censored))

	svc.Recover(remotetest.OpDelete)
	require.NoError(t, vm.ConfirmPermanentDelete(context.Background()))
	assert.Empty(t, vm.Snapshot().PendingDelete)
}

func TestDismissError(t *testing.T) {
	vm, svc := setup(t, comment("1", rest.CommentStatusPublished))
	svc.Fail(remotetest.OpUpdate, errors.New("boom"))

	require.Error(t, vm.ToggleTop(context.Background(), mustFind(t, vm, "1")))
	require.Error(t, vm.Snapshot().Err)

	vm.DismissError()
	assert.NoError(t, vm.Snapshot().Err)
}

// 场景A：置顶成功后出现在已发布列表中
func TestScenarioToggleTop(t *testing.T) {
	vm, _ := setup(t, rest.Comment{ID: "1", Status: rest.CommentStatusPublished})

	require.NoError(t, vm.ToggleTop(context.Background(), rest.Comment{ID: "1"}))

	view := vm.Snapshot()
	require.Len(t, view.Published, 1)
	assert.Equal(t, "1", view.Published[0].ID)
	assert.True(t, view.Published[0].IsTop)
}

// 场景B：确认删除后已屏蔽列表为空
func TestScenarioConfirmDelete(t *testing.T) {
	vm, _ := setup(t, comment("5", rest.CommentStatusCensored))

	require.NoError(t, vm.RequestPermanentDelete("5"))
	require.NoError(t, vm.ConfirmPermanentDelete(context.Background()))

	view := vm.Snapshot()
	assert.Empty(t, view.Censored)
	assert.Empty(t, view.PendingDelete)
}

// 场景C：屏蔽失败时评论留在已发布列表，错误为评论领域错误
func TestScenarioCensorFails(t *testing.T) {
	vm, svc := setup(t, comment("2", rest.CommentStatusPublished))
	svc.Fail(remotetest.OpUpdate, errors.New("simulated"))

	err := vm.Censor(context.Background(), rest.Comment{ID: "2", Status: rest.CommentStatusPublished})
	require.Error(t, err)

	view := vm.Snapshot()
	require.Len(t, view.Published, 1)
	assert.Equal(t, "2", view.Published[0].ID)
	assert.Equal(t, rest.CommentStatusPublished, view.Published[0].Status)
	assert.Empty(t, view.Censored)
	assert.True(t, remote.IsCommentError(view.Err))
	assert.Equal(t, err, view.Err)
}

// gatedStore 让下一次 Comments 读取在返回前停住，模拟一次慢的重新分类
type gatedStore struct {
	*store.Store

	mu      sync.Mutex
	release chan struct{}
	reached chan struct{}
}

func (g *gatedStore) hold() (reached, release chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reached, g.release = make(chan struct{}), make(chan struct{})
	return g.reached, g.release
}

func (g *gatedStore) Comments() []rest.Comment {
	comments := g.Store.Comments()

	g.mu.Lock()
	reached, release := g.reached, g.release
	g.reached, g.release = nil, nil
	g.mu.Unlock()

	if reached != nil {
		close(reached)
		<-release
	}
	return comments
}

func TestConcurrentOperationsDoNotDrift(t *testing.T) {
	svc := remotetest.New(comment("1", rest.CommentStatusPublished))
	gs := &gatedStore{Store: store.New(svc)}
	vm := New(gs)
	require.NoError(t, vm.Load(context.Background()))

	target := mustFind(t, vm, "1")
	reached, release := gs.hold()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, vm.ToggleTop(context.Background(), target))
	}()
	<-reached

	// 置顶的重新分类停在旧集合上时完成屏蔽
	go func() {
		defer wg.Done()
		assert.NoError(t, vm.Censor(context.Background(), rest.Comment{ID: "1"}))
	}()
	require.Eventually(t, func() bool {
		c, ok := gs.Store.Find("1")
		return ok && c.Status == rest.CommentStatusCensored
	}, time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	view := vm.Snapshot()
	assert.Empty(t, view.Published)
	assert.Equal(t, []string{"1"}, ids(view.Censored))
	assert.NoError(t, vm.RequestPermanentDelete("1"))
}
