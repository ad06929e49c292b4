package scheduler

import (
	"context"
	"time"

	"github.com/mengeric/cryptopulse-go/logging"
)

// TrainFunc 执行一次训练，返回训练状态字（ok/not_enough_data/...）。
type TrainFunc func(ctx context.Context) (status string, err error)

// Trainer 周期性重训模型。
type Trainer struct {
	fn       TrainFunc
	interval time.Duration
}

// NewTrainer 构造。
func NewTrainer(fn TrainFunc, interval time.Duration) *Trainer {
	return &Trainer{fn: fn, interval: interval}
}

// Start 启动重训循环。数据不足等状态属正常，记录后等待下个周期。
func (t *Trainer) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status, err := t.fn(ctx)
				if err != nil {
					logging.L().Warnf(ctx, "train failed: %v", err)
					continue
				}
				logging.L().Infof(ctx, "train finished: status=%s", status)
			}
		}
	}()
}
