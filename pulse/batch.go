package pulse

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mengeric/cryptopulse-go/logging"
	"github.com/mengeric/cryptopulse-go/tracker"
)

// RunState 描述当前（或最近一次）批次运行的共享可变记录。
// 所有字段的读写都必须持有 BatchRunner 的互斥锁；可空字段用指针表达 JSON null。
// 指针字段的更新始终整体替换，快照复制后不会被后续写入改动。
type RunState struct {
	Running   bool     `json:"running"`
	Done      int      `json:"done"`
	Fail      int      `json:"fail"`
	Target    int      `json:"target"`
	Delay     *float64 `json:"delay"`
	StartedAt *string  `json:"started_at"`
	UpdatedAt *string  `json:"updated_at"`
	LastError *string  `json:"last_error"`
	RunID     *string  `json:"run_id"`
}

// BatchReply start/stop/reset 的统一应答：状态字 + 状态快照（JSON 平铺）。
type BatchReply struct {
	Status string `json:"status"`
	RunState
}

// StatusView status 的应答：附带 ETA 投影。
type StatusView struct {
	Status     string `json:"status"`
	EtaSeconds int    `json:"eta_seconds"`
	RunState
}

// BatchRunner 服务端批量采集控制器。
// 一个进程一个实例；HTTP 处理协程与至多一个后台采集循环并发访问同一 RunState。
// 锁只保护记录本身的字段组更新，绝不跨越取价/落库/睡眠持有。
type BatchRunner struct {
	mu    sync.Mutex
	st    RunState
	guard *tracker.Guard
	ing   *Ingestor
}

// NewBatchRunner 构造。
func NewBatchRunner(ing *Ingestor) *BatchRunner {
	return &BatchRunner{guard: tracker.NewGuard(), ing: ing}
}

// Start 启动一次 count 轮、间隔 delay 秒的后台采集。
// 行为：已有运行（含停止后尚未退场的循环）时不产生副作用，返回 already_running 与当前快照；
// 否则原子初始化 RunState 并派生恰好一个后台协程，立即返回 started。
// 输入假定已由 HTTP 边界校验（count 1..2000，delay 1.0..600.0）。
func (b *BatchRunner) Start(parent context.Context, count int, delay float64) BatchReply {
	ctx, ok := b.guard.TryAcquire(parent)
	if !ok {
		b.mu.Lock()
		snap := b.st
		b.mu.Unlock()
		return BatchReply{Status: "already_running", RunState: snap}
	}
	now := nowISO()
	rid := uuid.NewString()
	d := delay
	b.mu.Lock()
	b.st = RunState{Running: true, Target: count, Delay: &d, StartedAt: &now, UpdatedAt: &now, RunID: &rid}
	snap := b.st
	b.mu.Unlock()
	go b.run(ctx, count, delay)
	logging.L().Infof(parent, "batch started: run=%s target=%d delay=%.1fs", rid, count, delay)
	return BatchReply{Status: "started", RunState: snap}
}

// run 后台采集循环体。
// 每轮：迭代边界检查 running -> 取价落库 -> 更新计数 -> 抖动睡眠。
// 单轮失败只记入 fail/last_error，绝不终止运行；循环退出后置 running=false。
func (b *BatchRunner) run(ctx context.Context, count int, delay float64) {
	defer b.guard.Release()
	for i := 0; i < count; i++ {
		b.mu.Lock()
		running := b.st.Running
		b.mu.Unlock()
		if !running || ctx.Err() != nil {
			break
		}

		if _, err := b.ing.CollectOnce(ctx); err != nil {
			logging.L().Warnf(ctx, "batch iteration failed: %v", err)
			now := nowISO()
			msg := err.Error()
			b.mu.Lock()
			b.st.Fail++
			b.st.LastError = &msg
			b.st.UpdatedAt = &now
			b.mu.Unlock()
		} else {
			now := nowISO()
			b.mu.Lock()
			b.st.Done++
			b.st.UpdatedAt = &now
			b.mu.Unlock()
		}

		sleepCtx(ctx, jitter(delay))
	}
	now := nowISO()
	b.mu.Lock()
	b.st.Running = false
	b.st.UpdatedAt = &now
	b.mu.Unlock()
}

// Status 只读投影：remaining = max(0, target-done)，运行中且 delay>0 时 eta = floor(remaining*delay)。
func (b *BatchRunner) Status() StatusView {
	b.mu.Lock()
	snap := b.st
	b.mu.Unlock()
	remaining := snap.Target - snap.Done
	if remaining < 0 {
		remaining = 0
	}
	eta := 0
	if snap.Running && snap.Delay != nil && *snap.Delay > 0 {
		eta = int(float64(remaining) * *snap.Delay)
	}
	return StatusView{Status: "ok", EtaSeconds: eta, RunState: snap}
}

// Stop 请求优雅停止：只翻转 running 标志，循环在下一个迭代边界退场。
// 不等待循环收尾，至多还有一轮在途的取价+落库+睡眠。
func (b *BatchRunner) Stop() BatchReply {
	now := nowISO()
	b.mu.Lock()
	b.st.Running = false
	b.st.UpdatedAt = &now
	snap := b.st
	b.mu.Unlock()
	return BatchReply{Status: "stopping", RunState: snap}
}

// Reset 无条件复位 RunState（测试/管理用途）。
// 若仍有循环在退场，它可能继续向刚复位的计数器写入增量；
// 需要干净状态的调用方应先 Stop 并等待退场再 Reset。
func (b *BatchRunner) Reset() BatchReply {
	now := nowISO()
	b.mu.Lock()
	b.st = RunState{UpdatedAt: &now}
	snap := b.st
	b.mu.Unlock()
	return BatchReply{Status: "reset", RunState: snap}
}

// Draining 后台循环是否仍占用运行权（测试用）。
func (b *BatchRunner) Draining() bool { return b.guard.Active() }

// jitter 在 delay 上叠加 ±0.25s 随机抖动，避免与上游限流窗口同步；下限 0。
func jitter(delaySec float64) time.Duration {
	d := delaySec + (rand.Float64()-0.5)*0.5
	if d < 0 {
		d = 0
	}
	return time.Duration(d * float64(time.Second))
}

// sleepCtx 可被上下文取消的睡眠。
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
