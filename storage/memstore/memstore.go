package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mengeric/cryptopulse-go/storage"
)

// Store 是一个线程安全的内存实现，仅用于开发/测试场景。
type Store struct {
	mu     sync.RWMutex
	prices map[string]*storage.PriceRecord
	meta   map[string]string
	nextID uint
}

// New 创建内存存储。
func New() *Store {
	return &Store{prices: map[string]*storage.PriceRecord{}, meta: map[string]string{}}
}

// UpsertPrice 幂等写入：重复 ts_utc 静默接受且不覆盖。
func (s *Store) UpsertPrice(ctx context.Context, tsUTC string, priceUSD float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prices[tsUTC]; ok {
		return nil
	}
	s.nextID++
	s.prices[tsUTC] = &storage.PriceRecord{ID: s.nextID, TsUTC: tsUTC, PriceUSD: priceUSD, CreatedAt: time.Now()}
	return nil
}

// LastPrices 返回最近 n 条，按 ts_utc 升序。
func (s *Store) LastPrices(ctx context.Context, n int) ([]storage.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]storage.PriceRecord, 0, len(s.prices))
	for _, r := range s.prices {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TsUTC < all[j].TsUTC })
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// CountPrices 读数总条数。
func (s *Store) CountPrices(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.prices)), nil
}

// GetMeta 读取元数据。
func (s *Store) GetMeta(ctx context.Context, k string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.meta[k]; ok {
		return v, nil
	}
	return "", storage.ErrNotFound
}

// PutMeta 写入或覆盖元数据。
func (s *Store) PutMeta(ctx context.Context, k, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[k] = v
	return nil
}
