package scheduler

import (
	"context"
	"time"

	"github.com/mengeric/cryptopulse-go/client"
	"github.com/mengeric/cryptopulse-go/logging"
)

// Collector 只依赖“采集一次”，避免与具体组合方式强耦合。
type Collector interface {
	CollectOnce(ctx context.Context) (client.PricePoint, error)
}

// Sampler 周期性采集行情（连续模式，区别于有界批次）。
type Sampler struct {
	col      Collector
	interval time.Duration
}

// NewSampler 构造。
func NewSampler(col Collector, interval time.Duration) *Sampler {
	return &Sampler{col: col, interval: interval}
}

// Start 启动采样循环。失败只告警，下个周期继续。
func (s *Sampler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p, err := s.col.CollectOnce(ctx)
				if err != nil {
					logging.L().Warnf(ctx, "sample failed: %v", err)
					continue
				}
				logging.L().Debug(ctx, "sampled", "ts", p.TsUTC, "price", p.PriceUSD)
			}
		}
	}()
}
