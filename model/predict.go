package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/mengeric/cryptopulse-go/features"
	"github.com/mengeric/cryptopulse-go/storage"
)

// 预测所需的最小原始读数条数。
const minPredictRows = 20

// PredictNow 用已保存的模型对当前序列做一次方向预测。
// 返回统一的 status 载荷：ok / no_model / load_error / not_enough_data / no_features。
// ok 时包含 horizon、latest_ts、latest_price 与 proba_up_next_<h>（上涨概率）。
func PredictNow(ctx context.Context, st storage.Storage) map[string]any {
	b, err := Load(ctx, st)
	if err != nil {
		if errors.Is(err, ErrNoModel) {
			return map[string]any{"status": "no_model"}
		}
		return map[string]any{"status": "load_error", "error": err.Error()}
	}

	recs, err := st.LastPrices(ctx, loadLimit)
	if err != nil {
		return map[string]any{"status": "load_error", "error": err.Error()}
	}
	if len(recs) < minPredictRows {
		return map[string]any{"status": "not_enough_data"}
	}

	set := features.Make(recs, b.Meta.Horizon)
	if len(set.X) == 0 {
		return map[string]any{"status": "no_features"}
	}

	x := scaleRow(set.X[len(set.X)-1], b.Mean, b.Std)
	p := proba(b.Weights, b.Bias, x)
	return map[string]any{
		"status":       "ok",
		"horizon":      b.Meta.Horizon,
		"latest_ts":    set.LatestTs,
		"latest_price": set.LatestPrice,
		fmt.Sprintf("proba_up_next_%d", b.Meta.Horizon): p,
	}
}
