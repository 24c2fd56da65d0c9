package state

import (
	"fmt"
	"sync"
)

// Persister 抽象持久化槽位，Store 为默认实现
type Persister interface {
	Load() AppState
	Save(AppState) error
}

// Container 独占持有 AppState。所有状态迁移经 Update 串行执行，
// 新快照保存成功后才会对外可见。
type Container struct {
	mu      sync.RWMutex
	store   Persister
	current AppState
}

// NewContainer 从持久化槽位加载初始状态
func NewContainer(store Persister) *Container {
	return &Container{store: store, current: store.Load()}
}

// Snapshot 返回当前状态的深拷贝
func (c *Container) Snapshot() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// Update 以当前状态的副本调用 fn，保存并发布其返回值。
// fn 返回错误或保存失败时当前状态保持不变。
func (c *Container) Update(fn func(AppState) (AppState, error)) (AppState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.current.Clone())
	if err != nil {
		return c.current.Clone(), err
	}
	next.normalize()

	if err := c.store.Save(next); err != nil {
		return c.current.Clone(), fmt.Errorf("persist state: %w", err)
	}

	c.current = next.Clone()
	return next, nil
}
