package storage

import (
	"context"
	"errors"
	"time"
)

// PriceRecord 行情读数持久化实体。ts_utc 为 UTC 秒级 RFC3339 文本，作为幂等键。
type PriceRecord struct {
	ID        uint      `json:"-"`
	TsUTC     string    `json:"ts_utc"`
	PriceUSD  float64   `json:"price_usd"`
	CreatedAt time.Time `json:"-"`
}

// MetaRecord 键值元数据（模型工件等）。
type MetaRecord struct {
	K string
	V string
}

// Storage 持久化接口（可由宿主实现或使用内置 gormstore/memstore）。
type Storage interface {
	// UpsertPrice 按 ts_utc 幂等写入：已存在的时间戳静默接受且不覆盖。
	UpsertPrice(ctx context.Context, tsUTC string, priceUSD float64) error
	// LastPrices 返回最近 n 条读数，按 ts_utc 升序。
	LastPrices(ctx context.Context, n int) ([]PriceRecord, error)
	// CountPrices 读数总条数。
	CountPrices(ctx context.Context) (int64, error)
	// GetMeta 读取元数据，不存在返回 ErrNotFound。
	GetMeta(ctx context.Context, k string) (string, error)
	// PutMeta 写入或覆盖元数据。
	PutMeta(ctx context.Context, k, v string) error
}

// ErrNotFound 记录不存在。
var ErrNotFound = errors.New("not found")
