package model

import (
	"context"
	"time"

	"github.com/mengeric/cryptopulse-go/features"
	"github.com/mengeric/cryptopulse-go/storage"
)

// 训练超参：全批量梯度下降的轮数与学习率（特征已标准化，固定值即可）。
const (
	loadLimit = 2000
	gdEpochs  = 2000
	gdLR      = 0.1
)

// Report 训练报告。Status 为 ok 时 acc/n_train/n_test 有效；
// 其余状态（not_enough_data/single_class/too_imbalanced/no_features）属正常分支，不是错误。
type Report struct {
	Status      string         `json:"status"`
	NRows       int            `json:"n_rows,omitempty"`
	MinRequired int            `json:"min_required,omitempty"`
	Msg         string         `json:"msg,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	AccTest     float64        `json:"acc_test,omitempty"`
	NTrain      int            `json:"n_train,omitempty"`
	NTest       int            `json:"n_test,omitempty"`
}

// Train 用存储中的价格序列训练二分类器并保存工件。
// 流程：取数 -> 特征工程 -> 标签体检 -> 时间序切分（不打乱）-> 标准化 + 逻辑回归 -> 评估 -> 落盘。
// 返回：Report 描述训练结果；error 仅在存储读写失败时返回。
func Train(ctx context.Context, st storage.Storage, horizon, minRows int) (Report, error) {
	recs, err := st.LastPrices(ctx, loadLimit)
	if err != nil {
		return Report{}, err
	}
	nRows := len(recs)
	if nRows < minRows {
		return Report{Status: "not_enough_data", NRows: nRows, MinRequired: minRows}, nil
	}

	set := features.Make(recs, horizon)
	if len(set.X) == 0 {
		return Report{Status: "no_features", NRows: nRows}, nil
	}

	// 标签体检：至少两类，少数类不少于 3 例
	counts := map[int]int{}
	for _, y := range set.Y {
		counts[y]++
	}
	if len(counts) < 2 {
		return Report{Status: "single_class", Msg: "target has no variation", NRows: nRows}, nil
	}
	minority := counts[0]
	if counts[1] < minority {
		minority = counts[1]
	}
	if minority < 3 {
		return Report{
			Status: "too_imbalanced",
			Msg:    "minority class has fewer than 3 examples",
			Counts: map[string]int{"0": counts[0], "1": counts[1]},
		}, nil
	}

	// 时间序 75/25 切分，不打乱
	n := len(set.X)
	nTest := n / 4
	if nTest < 1 {
		nTest = 1
	}
	cut := n - nTest
	Xtr, ytr := set.X[:cut], set.Y[:cut]
	Xte, yte := set.X[cut:], set.Y[cut:]

	mean, std := fitScaler(Xtr)
	scaled := make([][]float64, len(Xtr))
	for i, row := range Xtr {
		scaled[i] = scaleRow(row, mean, std)
	}
	w, b := trainLogReg(scaled, ytr, gdEpochs, gdLR)

	hit := 0
	for i, row := range Xte {
		pred := 0
		if proba(w, b, scaleRow(row, mean, std)) >= 0.5 {
			pred = 1
		}
		if pred == yte[i] {
			hit++
		}
	}
	acc := float64(hit) / float64(len(yte))

	bundle := Bundle{
		Weights: w,
		Bias:    b,
		Mean:    mean,
		Std:     std,
		Meta: Meta{
			FeatCols:  features.Cols,
			Horizon:   horizon,
			TrainedAt: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
			NRowsRaw:  nRows,
			NTrain:    len(ytr),
			NTest:     len(yte),
			Classes:   []int{0, 1},
			Counts:    []int{counts[0], counts[1]},
			AccTest:   acc,
		},
	}
	if err := Save(ctx, st, bundle); err != nil {
		return Report{}, err
	}
	return Report{Status: "ok", AccTest: acc, NTrain: len(ytr), NTest: len(yte)}, nil
}
