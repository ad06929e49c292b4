package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mengeric/cryptopulse-go/storage"
)

// MetaKey 模型工件在 meta 表中的键。
const MetaKey = "model"

// Meta 训练元数据，随模型一起保存。
type Meta struct {
	FeatCols  []string `json:"feat_cols"`
	Horizon   int      `json:"horizon"`
	TrainedAt string   `json:"trained_at"`
	NRowsRaw  int      `json:"n_rows_raw"`
	NTrain    int      `json:"n_train"`
	NTest     int      `json:"n_test"`
	Classes   []int    `json:"classes"`
	Counts    []int    `json:"counts"`
	AccTest   float64  `json:"acc_test"`
}

// Bundle 模型工件：标准化参数 + 逻辑回归权重 + 元数据。
// 以 JSON 存入 meta 表，便于人工检视与跨进程迁移。
type Bundle struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
	Meta    Meta      `json:"meta"`
}

// ErrNoModel 尚未训练过模型。
var ErrNoModel = errors.New("no model")

// Save 将模型工件写入存储。
func Save(ctx context.Context, st storage.Storage, b Bundle) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return st.PutMeta(ctx, MetaKey, string(raw))
}

// Load 从存储读取模型工件。未训练返回 ErrNoModel。
func Load(ctx context.Context, st storage.Storage) (Bundle, error) {
	var b Bundle
	raw, err := st.GetMeta(ctx, MetaKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return b, ErrNoModel
		}
		return b, err
	}
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return b, fmt.Errorf("unmarshal model: %w", err)
	}
	if len(b.Weights) == 0 || b.Meta.Horizon <= 0 {
		return b, fmt.Errorf("invalid model bundle")
	}
	return b, nil
}
