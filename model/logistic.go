package model

import "math"

// fitScaler 计算各特征列的均值与样本标准差（std 为 0 时取 1，避免除零）。
func fitScaler(X [][]float64) (mean, std []float64) {
	k := len(X[0])
	n := float64(len(X))
	mean = make([]float64, k)
	std = make([]float64, k)
	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return mean, std
}

// scaleRow 标准化单行。
func scaleRow(x, mean, std []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - mean[j]) / std[j]
	}
	return out
}

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

// proba 单样本的 P(y=1)。
func proba(w []float64, b float64, x []float64) float64 {
	z := b
	for j, v := range x {
		z += w[j] * v
	}
	return sigmoid(z)
}

// trainLogReg 全批量梯度下降训练逻辑回归。
// 零初始化权重，确定性训练（无随机源），对标准化后的小规模特征收敛良好。
func trainLogReg(X [][]float64, y []int, epochs int, lr float64) (w []float64, b float64) {
	k := len(X[0])
	n := float64(len(X))
	w = make([]float64, k)
	gw := make([]float64, k)
	for e := 0; e < epochs; e++ {
		for j := range gw {
			gw[j] = 0
		}
		gb := 0.0
		for i, row := range X {
			err := proba(w, b, row) - float64(y[i])
			for j, v := range row {
				gw[j] += err * v
			}
			gb += err
		}
		for j := range w {
			w[j] -= lr * gw[j] / n
		}
		b -= lr * gb / n
	}
	return w, b
}
