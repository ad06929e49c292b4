package tracker

import (
	"context"
	"sync"
)

// Guard 保证同一时刻至多一个后台批次协程。
// 设计：用锁内的 try-acquire 取代“先查布尔再启动”的裸检查，后者在并发 start 下是竞态。
// Guard 同时保留本次运行的取消句柄：对外协议只承诺协作式停止（按迭代边界检查），
// 取消句柄仅供进程关闭等内部强制场景使用。
type Guard struct {
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

// NewGuard 构造。
func NewGuard() *Guard { return &Guard{} }

// TryAcquire 尝试占用运行权。
// 参数：parent 父上下文，运行协程应使用返回的 ctx 以便随父级关闭。
// 返回：ctx 本次运行的上下文；ok=false 表示已有运行未释放（包括停止后尚未退场的循环）。
func (g *Guard) TryAcquire(parent context.Context) (ctx context.Context, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return nil, false
	}
	ctx, g.cancel = context.WithCancel(parent)
	g.active = true
	return ctx, true
}

// Release 释放运行权，由运行协程在退出前调用。
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.active = false
}

// Active 是否有运行占用中。
func (g *Guard) Active() bool { g.mu.Lock(); defer g.mu.Unlock(); return g.active }

// Cancel 强制取消当前运行（仅内部使用，不改变 Release 职责）。
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
}
