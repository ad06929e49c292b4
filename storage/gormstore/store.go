package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mengeric/cryptopulse-go/storage"
)

// priceModel 映射 prices 表。ts_utc 唯一索引承担幂等键。
type priceModel struct {
	ID        uint    `gorm:"primaryKey"`
	TsUTC     string  `gorm:"column:ts_utc;uniqueIndex;not null"`
	PriceUSD  float64 `gorm:"column:price_usd;not null"`
	CreatedAt time.Time
}

func (priceModel) TableName() string { return "prices" }

// metaModel 映射 meta 表（k/v，存放模型工件等）。
type metaModel struct {
	K string `gorm:"column:k;primaryKey"`
	V string `gorm:"column:v;type:text"`
}

func (metaModel) TableName() string { return "meta" }

// Store 基于 GORM 的 Storage 实现。
type Store struct{ db *gorm.DB }

// New 创建 Store，调用方应自行在外部执行 AutoMigrate（或使用 Open）。
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Open 打开 sqlite 数据库并迁移表结构。
// 参数：path 数据库文件路径，如 data/prices.db。
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&priceModel{}, &metaModel{}); err != nil {
		return nil, err
	}
	return New(db), nil
}

// UpsertPrice 实现 Storage.UpsertPrice。
// 语义：等价 INSERT OR IGNORE——重复 ts_utc 静默接受，既不报错也不覆盖已有值。
func (s *Store) UpsertPrice(ctx context.Context, tsUTC string, priceUSD float64) error {
	m := priceModel{TsUTC: tsUTC, PriceUSD: priceUSD}
	return s.db.WithContext(ctx).Where("ts_utc = ?", tsUTC).FirstOrCreate(&m).Error
}

// LastPrices 实现 Storage.LastPrices：取最近 n 条后按时间升序返回。
func (s *Store) LastPrices(ctx context.Context, n int) ([]storage.PriceRecord, error) {
	var list []priceModel
	q := s.db.WithContext(ctx).Order("ts_utc DESC")
	if n > 0 {
		q = q.Limit(n)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	out := make([]storage.PriceRecord, len(list))
	for i, m := range list {
		// 反转为升序
		out[len(list)-1-i] = storage.PriceRecord{ID: m.ID, TsUTC: m.TsUTC, PriceUSD: m.PriceUSD, CreatedAt: m.CreatedAt}
	}
	return out, nil
}

// CountPrices 实现 Storage.CountPrices。
func (s *Store) CountPrices(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&priceModel{}).Count(&n).Error
	return n, err
}

// GetMeta 实现 Storage.GetMeta。
func (s *Store) GetMeta(ctx context.Context, k string) (string, error) {
	var m metaModel
	if err := s.db.WithContext(ctx).Where("k = ?", k).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return m.V, nil
}

// PutMeta 实现 Storage.PutMeta（覆盖写）。
func (s *Store) PutMeta(ctx context.Context, k, v string) error {
	m := metaModel{K: k, V: v}
	return s.db.WithContext(ctx).Where("k = ?", k).Assign(metaModel{V: v}).FirstOrCreate(&m).Error
}
