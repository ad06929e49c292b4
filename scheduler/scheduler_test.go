package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mengeric/cryptopulse-go/client"
)

// countingCollector 计数采集桩，可注入失败。
type countingCollector struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingCollector) CollectOnce(ctx context.Context) (client.PricePoint, error) {
	n := c.calls.Add(1)
	if c.fail.Load() {
		return client.PricePoint{}, errors.New("collect boom")
	}
	return client.PricePoint{TsUTC: "2026-01-01T00:00:00Z", PriceUSD: float64(n)}, nil
}

func TestSamplerTicksAndStops(t *testing.T) {
	Convey("sampler fires on its interval and stops with the context", t, func() {
		col := &countingCollector{}
		ctx, cancel := context.WithCancel(context.Background())

		NewSampler(col, 20*time.Millisecond).Start(ctx)
		time.Sleep(110 * time.Millisecond)
		before := col.calls.Load()
		So(before, ShouldBeGreaterThanOrEqualTo, 3)

		cancel()
		time.Sleep(60 * time.Millisecond)
		after := col.calls.Load()
		// 取消后最多还有一次在途调用
		So(after-before, ShouldBeLessThanOrEqualTo, 1)
	})
}

func TestSamplerSurvivesFailures(t *testing.T) {
	Convey("a failing collect does not kill the loop", t, func() {
		col := &countingCollector{}
		col.fail.Store(true)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		NewSampler(col, 20*time.Millisecond).Start(ctx)
		time.Sleep(90 * time.Millisecond)
		So(col.calls.Load(), ShouldBeGreaterThanOrEqualTo, 2)

		col.fail.Store(false)
		time.Sleep(50 * time.Millisecond)
		So(col.calls.Load(), ShouldBeGreaterThanOrEqualTo, 4)
	})
}

func TestTrainerTicksAndSurvivesErrors(t *testing.T) {
	Convey("trainer keeps rescheduling across statuses and errors", t, func() {
		var calls atomic.Int32
		var failing atomic.Bool
		fn := func(ctx context.Context) (string, error) {
			calls.Add(1)
			if failing.Load() {
				return "", errors.New("train boom")
			}
			return "not_enough_data", nil
		}
		ctx, cancel := context.WithCancel(context.Background())

		NewTrainer(fn, 20*time.Millisecond).Start(ctx)
		time.Sleep(70 * time.Millisecond)
		So(calls.Load(), ShouldBeGreaterThanOrEqualTo, 2)

		failing.Store(true)
		time.Sleep(50 * time.Millisecond)
		failing.Store(false)
		time.Sleep(50 * time.Millisecond)
		So(calls.Load(), ShouldBeGreaterThanOrEqualTo, 5)

		cancel()
		time.Sleep(40 * time.Millisecond)
		before := calls.Load()
		time.Sleep(60 * time.Millisecond)
		So(calls.Load(), ShouldEqual, before)
	})
}
