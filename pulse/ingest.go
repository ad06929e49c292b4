package pulse

import (
	"context"
	"fmt"
	"time"

	"github.com/mengeric/cryptopulse-go/client"
	"github.com/mengeric/cryptopulse-go/storage"
)

// Ingestor 执行一次“取价 + 落库”。
// 行情源与存储都是窄接口协作方：取价可能失败，落库对重复时间戳幂等。
type Ingestor struct {
	api   client.PriceAPI
	store storage.Storage
}

// NewIngestor 构造。
func NewIngestor(api client.PriceAPI, store storage.Storage) *Ingestor {
	return &Ingestor{api: api, store: store}
}

// CollectOnce 取一次现价并写入存储。
// 返回：成功时为本次读数；失败时 error 标明出错环节（fetch 或 store）。
func (g *Ingestor) CollectOnce(ctx context.Context) (client.PricePoint, error) {
	p, err := g.api.FetchPrice(ctx)
	if err != nil {
		return client.PricePoint{}, fmt.Errorf("fetch price: %w", err)
	}
	if err := g.store.UpsertPrice(ctx, p.TsUTC, p.PriceUSD); err != nil {
		return client.PricePoint{}, fmt.Errorf("store price: %w", err)
	}
	return p, nil
}

// nowISO 进程时钟的 UTC 秒级时间戳。
func nowISO() string { return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339) }
