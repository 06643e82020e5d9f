package viewmodel

import (
	"context"
	"errors"
	"sync"

	"blog-moderation/api/rest"
)

// ErrNotDeletable 只有已屏蔽的评论可以永久删除
var ErrNotDeletable = errors.New("only censored comments can be deleted permanently")

// Store 视图模型依赖的评论Store，*store.Store 满足该接口
type Store interface {
	FetchAll(ctx context.Context) error
	Update(ctx context.Context, id string, patch rest.CommentPatch) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context, id string) error
	ClearError()
	Comments() []rest.Comment
	Find(id string) (rest.Comment, bool)
	Loaded() bool
	Err() error
	OnChange(fn func())
}

// View 某一时刻的审核视图，调用方可以自由持有
type View struct {
	Ready         bool
	Published     []rest.Comment
	Censored      []rest.Comment
	PendingDelete string
	Err           error
}

// ViewModel 审核视图模型：按状态分类评论，并编排审核操作
type ViewModel struct {
	store Store

	// mu 在读取Store期间持有；Store 在锁外通知监听器，不会反向加锁
	mu            sync.RWMutex
	ready         bool
	published     []rest.Comment
	censored      []rest.Comment
	pendingDelete string
}

// New 创建视图模型，Store 每次变更后重新分类
func New(store Store) *ViewModel {
	vm := &ViewModel{store: store}
	store.OnChange(vm.derive)
	vm.derive()
	return vm
}

// Partition 按状态把评论分为已发布和已屏蔽两组，保持原有顺序
func Partition(comments []rest.Comment) (published, censored []rest.Comment) {
	published = make([]rest.Comment, 0, len(comments))
	censored = make([]rest.Comment, 0, len(comments))
	for _, c := range comments {
		if c.Status == rest.CommentStatusCensored {
			censored = append(censored, c)
		} else {
			published = append(published, c)
		}
	}
	return published, censored
}

// derive 从Store全量重新计算分类，读取与写入在同一把锁内，后写入者总是读到更新的集合
func (vm *ViewModel) derive() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.ready = vm.store.Loaded()
	vm.published, vm.censored = nil, nil
	if vm.ready {
		vm.published, vm.censored = Partition(vm.store.Comments())
	}
}

// Load 拉取全部评论
func (vm *ViewModel) Load(ctx context.Context) error {
	return vm.store.FetchAll(ctx)
}

// Refresh 重新获取单条评论
func (vm *ViewModel) Refresh(ctx context.Context, id string) error {
	return vm.store.Refresh(ctx, id)
}

// ToggleTop 切换置顶
func (vm *ViewModel) ToggleTop(ctx context.Context, c rest.Comment) error {
	return vm.store.Update(ctx, c.ID, rest.TopPatch(!c.IsTop))
}

// Censor 屏蔽评论
func (vm *ViewModel) Censor(ctx context.Context, c rest.Comment) error {
	return vm.store.Update(ctx, c.ID, rest.StatusPatch(rest.CommentStatusCensored))
}

// Restore 恢复评论
func (vm *ViewModel) Restore(ctx context.Context, c rest.Comment) error {
	return vm.store.Update(ctx, c.ID, rest.StatusPatch(rest.CommentStatusPublished))
}

// MarkReadOnExpand 展开详情时标记已读，已读时不发请求
func (vm *ViewModel) MarkReadOnExpand(ctx context.Context, c rest.Comment) error {
	if c.IsRead {
		return nil
	}
	if current, ok := vm.store.Find(c.ID); ok && current.IsRead {
		return nil
	}
	return vm.store.Update(ctx, c.ID, rest.ReadPatch(true))
}

// RequestPermanentDelete 记录待删除的评论，等待确认
func (vm *ViewModel) RequestPermanentDelete(id string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if !contains(vm.censored, id) {
		return ErrNotDeletable
	}
	vm.pendingDelete = id
	return nil
}

// ConfirmPermanentDelete 删除待确认的评论，没有待确认目标时什么也不做
func (vm *ViewModel) ConfirmPermanentDelete(ctx context.Context) error {
	id, ok := vm.PendingDelete()
	if !ok {
		return nil
	}

	if err := vm.store.Delete(ctx, id); err != nil {
		return err
	}

	vm.mu.Lock()
	if vm.pendingDelete == id {
		vm.pendingDelete = ""
	}
	vm.mu.Unlock()
	return nil
}

// CancelPermanentDelete 取消删除
func (vm *ViewModel) CancelPermanentDelete() {
	vm.mu.Lock()
	vm.pendingDelete = ""
	vm.mu.Unlock()
}

// PendingDelete 当前待确认删除的评论ID
func (vm *ViewModel) PendingDelete() (string, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.pendingDelete, vm.pendingDelete != ""
}

// DismissError 关闭错误提示
func (vm *ViewModel) DismissError() {
	vm.store.ClearError()
}

// Find 按ID查找评论
func (vm *ViewModel) Find(id string) (rest.Comment, bool) {
	return vm.store.Find(id)
}

// Snapshot 当前视图的副本
func (vm *ViewModel) Snapshot() View {
	err := vm.store.Err()

	vm.mu.RLock()
	defer vm.mu.RUnlock()

	view := View{
		Ready:         vm.ready,
		PendingDelete: vm.pendingDelete,
		Err:           err,
	}
	if vm.ready {
		view.Published = append([]rest.Comment{}, vm.published...)
		view.Censored = append([]rest.Comment{}, vm.censored...)
	}
	return view
}

func contains(comments []rest.Comment, id string) bool {
	for _, c := range comments {
		if c.ID == id {
			return true
		}
	}
	return false
}
