package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	kratoslog "github.com/go-kratos/kratos/v2/log"
)

// DefaultStopTimeout 停止钩子的总超时
const DefaultStopTimeout = 30 * time.Second

// LifecycleManager 生命周期管理器
type LifecycleManager struct {
	logger      kratoslog.Logger
	hooks       []Hook
	started     int // 已成功启动的钩子数量
	stopTimeout time.Duration

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// Hook 生命周期钩子
type Hook struct {
	Name     string                      // 钩子名称
	OnStart  func(context.Context) error // 启动时执行的函数
	OnStop   func(context.Context) error // 停止时执行的函数
	Priority int                         // 数字越小越先启动、越后停止
	// Priority分级:
	// 0-99:    基础设施层（数据库、Redis、Kafka连接）
	// 100-199: 服务器层（HTTP服务器）
	// 200-299: 客户端层（远程评论服务）
	// 300+:    业务逻辑层（初始加载等）
}

// NewLifecycleManager 创建生命周期管理器
func NewLifecycleManager(logger kratoslog.Logger) *LifecycleManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &LifecycleManager{
		logger:      logger,
		stopTimeout: DefaultStopTimeout,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// SetStopTimeout 设置停止超时
func (lm *LifecycleManager) SetStopTimeout(d time.Duration) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.stopTimeout = d
}

// AddHook 添加生命周期钩子，同优先级保持注册顺序
func (lm *LifecycleManager) AddHook(hook Hook) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.hooks = append(lm.hooks, hook)
	sort.SliceStable(lm.hooks, func(i, j int) bool {
		return lm.hooks[i].Priority < lm.hooks[j].Priority
	})
}

// Start 按优先级启动钩子；任一失败时回滚已启动的钩子
func (lm *LifecycleManager) Start() error {
	lm.mu.Lock()
	hooks := append([]Hook(nil), lm.hooks...)
	lm.mu.Unlock()

	lm.logger.Log(kratoslog.LevelInfo, "msg", "Starting lifecycle hooks", "count", len(hooks))

	for i, hook := range hooks {
		if hook.OnStart != nil {
			if err := hook.OnStart(lm.ctx); err != nil {
				lm.logger.Log(kratoslog.LevelError, "msg", "Hook start failed", "name", hook.Name, "error", err)
				lm.setStarted(i)
				if stopErr := lm.Stop(); stopErr != nil {
					lm.logger.Log(kratoslog.LevelError, "msg", "Rollback failed", "error", stopErr)
				}
				return fmt.Errorf("hook %s: %w", hook.Name, err)
			}
			lm.logger.Log(kratoslog.LevelInfo, "msg", "Hook started", "name", hook.Name)
		}
		lm.setStarted(i + 1)
	}

	lm.logger.Log(kratoslog.LevelInfo, "msg", "All lifecycle hooks started")
	return nil
}

func (lm *LifecycleManager) setStarted(n int) {
	lm.mu.Lock()
	lm.started = n
	lm.mu.Unlock()
}

// Stop 反向停止已启动的钩子，只执行一次
func (lm *LifecycleManager) Stop() error {
	lm.stopOnce.Do(func() {
		lm.mu.Lock()
		hooks := append([]Hook(nil), lm.hooks[:lm.started]...)
		timeout := lm.stopTimeout
		lm.mu.Unlock()

		lm.logger.Log(kratoslog.LevelInfo, "msg", "Stopping lifecycle hooks")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for i := len(hooks) - 1; i >= 0; i-- {
			hook := hooks[i]
			if hook.OnStop == nil {
				continue
			}
			if err := hook.OnStop(ctx); err != nil {
				lm.logger.Log(kratoslog.LevelError, "msg", "Hook stop failed", "name", hook.Name, "error", err)
				if lm.stopErr == nil {
					lm.stopErr = fmt.Errorf("hook %s: %w", hook.Name, err)
				}
				continue
			}
			lm.logger.Log(kratoslog.LevelInfo, "msg", "Hook stopped", "name", hook.Name)
		}

		lm.cancel()
		close(lm.done)
		lm.logger.Log(kratoslog.LevelInfo, "msg", "All lifecycle hooks stopped")
	})

	return lm.stopErr
}

// Wait 阻塞直到收到退出信号或被停止
func (lm *LifecycleManager) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		lm.logger.Log(kratoslog.LevelInfo, "msg", "Received signal", "signal", sig.String())
		return lm.Stop()
	case <-lm.done:
		return lm.stopErr
	}
}

// Context 生命周期上下文，停止后被取消
func (lm *LifecycleManager) Context() context.Context {
	return lm.ctx
}

// Done 完成通道
func (lm *LifecycleManager) Done() <-chan struct{} {
	return lm.done
}

// IsRunning 是否仍在运行
func (lm *LifecycleManager) IsRunning() bool {
	select {
	case <-lm.done:
		return false
	default:
		return true
	}
}
