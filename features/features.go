package features

import (
	"math"

	"github.com/mengeric/cryptopulse-go/storage"
)

// Cols 特征列，顺序即特征向量顺序。
var Cols = []string{"ret1", "ret3", "vol5", "ma5", "ma15", "mom5"}

// Set 特征工程输出。
// X 与 Y 等长，只保留全部特征与标签均有效的行（滚动窗口未满或无未来标签的行被丢弃）。
// LatestTs/LatestPrice 对应最后一个保留行，预测使用其特征向量。
type Set struct {
	X           [][]float64
	Y           []int
	LatestTs    string
	LatestPrice float64
}

// Make 从升序价格序列构造特征与二分类标签。
// 特征：对数收益 ret1/ret3、收益波动 vol5（样本标准差）、均线 ma5/ma15、动量 mom5。
// 标签：未来第 horizon 个读数高于当前则为 1。
// 返回：窗口不足以产出任何完整行时 X 为空。
func Make(recs []storage.PriceRecord, horizon int) Set {
	n := len(recs)
	p := make([]float64, n)
	logp := make([]float64, n)
	for i, r := range recs {
		p[i] = r.PriceUSD
		logp[i] = math.Log(r.PriceUSD)
	}

	ret1 := make([]float64, n)
	for i := 1; i < n; i++ {
		ret1[i] = logp[i] - logp[i-1]
	}

	var out Set
	// ma15 需要 15 个读数，vol5 需要 5 个完整 ret1；下界 14 已覆盖其余窗口
	for i := 14; i < n-horizon; i++ {
		row := []float64{
			ret1[i],
			logp[i] - logp[i-3],
			stddev(ret1[i-4 : i+1]),
			mean(p[i-4 : i+1]),
			mean(p[i-14 : i+1]),
			p[i] - p[i-5],
		}
		y := 0
		if p[i+horizon] > p[i] {
			y = 1
		}
		out.X = append(out.X, row)
		out.Y = append(out.Y, y)
		out.LatestTs = recs[i].TsUTC
		out.LatestPrice = p[i]
	}
	return out
}

// mean 均值。
func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// stddev 样本标准差（ddof=1）。
func stddev(xs []float64) float64 {
	m := mean(xs)
	s := 0.0
	for _, x := range xs {
		s += (x - m) * (x - m)
	}
	return math.Sqrt(s / float64(len(xs)-1))
}
