// Package metrics は回帰モデルの評価指標と、ステップワイズ選択で使う平方和・調整済み決定係数を提供する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := mean(yTrue)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.NewUnidentifiableModelError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - rss/tss, nil
}

// TotalSumOfSquares は Σ(y − ȳ)² と ȳ を返す
func TotalSumOfSquares(y []float64) (sst, mean float64) {
	mean = stat.Mean(y, nil)
	for _, v := range y {
		d := v - mean
		sst += d * d
	}
	return sst, mean
}

// ExplainedSumOfSquares は当てはめ値の平均まわりの平方和 Σ(ŷ − ȳ)² を計算する。
// 切片付きの最小二乗解では SST = SSR + SSE が成り立つので、1 − SSR/SST は残差側の比率になる。
func ExplainedSumOfSquares(fitted []float64, yMean float64) float64 {
	var ss float64
	for _, v := range fitted {
		d := v - yMean
		ss += d * d
	}
	return ss
}

// AdjustedR2 は自由度調整済み決定係数 1 − (1 − R²)(n − 1)/(n − p − 1) を返す。
// p は切片を除く説明変数の数。n − p − 1 < 1 の場合は同定不能エラー。
func AdjustedR2(r2 float64, n, p int) (float64, error) {
	dfResid := n - p - 1
	if dfResid < 1 {
		return 0, errors.NewUnidentifiableModelError("AdjustedR2",
			"not enough residual degrees of freedom")
	}
	return 1 - (1-r2)*float64(n-1)/float64(dfResid), nil
}

// AdjustedR2FromSS は SSR と SST から調整済み決定係数を求める（ステップワイズ探索のスコア）。
func AdjustedR2FromSS(ssExplained, sst float64, n, p int) (float64, error) {
	if sst == 0 || math.IsNaN(sst) || math.IsInf(sst, 0) {
		return 0, errors.NewUnidentifiableModelError("AdjustedR2FromSS",
			"response has zero or non-finite total sum of squares")
	}
	return AdjustedR2(ssExplained/sst, n, p)
}

// SumSquaredResiduals は Σ(y − ŷ)² を計算する
func SumSquaredResiduals(y, fitted []float64) float64 {
	diff := make([]float64, len(y))
	floats.SubTo(diff, y, fitted)
	return floats.Dot(diff, diff)
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue.IsEmpty() {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

func mean(v *mat.VecDense) float64 {
	var s float64
	for i := 0; i < v.Len(); i++ {
		s += v.AtVec(i)
	}
	return s / float64(v.Len())
}
