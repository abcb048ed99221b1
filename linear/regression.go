// Package linear は正規方程式による最小二乗法（OLS）と、係数ごとの推測統計量を提供する。
// ステップワイズ選択の試行モデルと最終モデルの当てはめに使われる。
package linear

import (
	"math"

	"github.com/YuminosukeSato/stepwise/core/model"
	"github.com/YuminosukeSato/stepwise/core/parallel"
	"github.com/YuminosukeSato/stepwise/metrics"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLS は切片付きの通常最小二乗回帰モデル
type OLS struct {
	model.BaseEstimator

	tol   float64
	names []string

	coef      *mat.VecDense // 係数（切片を除く）
	intercept float64
	stdErr    []float64 // 末尾が切片
	tValues   []float64 // 末尾が切片
	pValues   []float64 // 末尾が切片
	fitted    []float64

	rank      int
	nObs      int
	nFeatures int
	dfResid   int
	r2        float64
	adjR2     float64
	sse       float64
	rmse      float64
	mae       float64
}

// NewOLS は新しいOLSモデルを作成する
func NewOLS(opts ...Option) *OLS {
	m := &OLS{tol: 1e-10}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NormalEquations は β = (XᵀX)⁻¹Xᵀy を解く。X は切片列を含めた計画行列。
// XᵀX が特異なら ErrSingularMatrix をラップした ModelError を返す。
func NormalEquations(X mat.Matrix, y mat.Vector) (beta *mat.VecDense, xtxInv *mat.Dense, err error) {
	defer errors.Recover(&err, "linear.NormalEquations")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError("linear.NormalEquations", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return nil, nil, errors.NewDimensionError("linear.NormalEquations", r, y.Len(), 0)
	}

	var XTX mat.Dense
	XTX.Mul(X.T(), X)

	// 逆行列を計算（条件数が大きすぎる場合もエラーになる）
	xtxInv = mat.NewDense(c, c, nil)
	if err := xtxInv.Inverse(&XTX); err != nil {
		return nil, nil, errors.NewModelError("linear.NormalEquations", "singular matrix", errors.ErrSingularMatrix)
	}

	var XTy mat.VecDense
	XTy.MulVec(X.T(), y)

	beta = mat.NewVecDense(c, nil)
	beta.MulVec(xtxInv, &XTy)
	return beta, xtxInv, nil
}

// Fit はモデルを学習させる。X は切片列を含まない n×k 行列、y は長さ n の列ベクトル。
// X が nil の場合は切片のみのモデルを当てはめる。
func (m *OLS) Fit(X, y mat.Matrix) error {
	m.Reset()

	ry, cy := y.Dims()
	r, c := ry, 0
	if X != nil {
		r, c = X.Dims()
	}

	if r == 0 {
		return errors.NewModelError("OLS.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("OLS.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("OLS.Fit", "y must be a column vector")
	}
	if m.names != nil && len(m.names) != c {
		return errors.NewDimensionError("OLS.Fit", len(m.names), c, 1)
	}

	k := c + 1
	dfResid := r - k
	if dfResid < 1 {
		return errors.NewUnidentifiableModelError("OLS.Fit", "not enough residual degrees of freedom")
	}

	// 切片項のために X の末尾に 1 の列を追加
	design := mat.NewDense(r, k, nil)
	yVec := mat.NewVecDense(r, nil)
	parallel.Rows(r, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				design.Set(i, j, X.At(i, j))
			}
			design.Set(i, c, 1.0)
			yVec.SetVec(i, y.At(i, 0))
		}
	})

	if err := errors.CheckMatrix("OLS.Fit.design", design, r, k, 0); err != nil {
		return err
	}

	beta, xtxInv, err := NormalEquations(design, yVec)
	if err != nil {
		return err
	}
	if err := errors.CheckNumericalStability("OLS.Fit.coefficients", beta.RawVector().Data, 0); err != nil {
		return errors.Wrap(err, "non-finite input")
	}

	m.rank = rankOf(design, m.tol)

	var fitted mat.VecDense
	fitted.MulVec(design, beta)
	m.fitted = make([]float64, r)
	for i := range m.fitted {
		m.fitted[i] = fitted.AtVec(i)
	}

	yData := make([]float64, r)
	for i := range yData {
		yData[i] = yVec.AtVec(i)
	}
	sst, _ := metrics.TotalSumOfSquares(yData)
	if err := errors.CheckScalar("OLS.Fit.sst", sst, 0); err != nil {
		return err
	}
	if sst == 0 {
		return errors.NewUnidentifiableModelError("OLS.Fit", "response has zero variance")
	}
	m.sse = metrics.SumSquaredResiduals(yData, m.fitted)
	if m.rmse, err = metrics.RMSE(yVec, &fitted); err != nil {
		return err
	}
	if m.mae, err = metrics.MAE(yVec, &fitted); err != nil {
		return err
	}
	m.r2 = 1 - m.sse/sst
	m.adjR2, err = metrics.AdjustedR2(m.r2, r, c)
	if err != nil {
		return err
	}

	// 係数ごとの標準誤差、t値、両側p値
	sigma2 := m.sse / float64(dfResid)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dfResid)}
	m.stdErr = make([]float64, k)
	m.tValues = make([]float64, k)
	m.pValues = make([]float64, k)
	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		m.stdErr[j] = se
		m.tValues[j], m.pValues[j] = tTest(b, se, tDist)
	}

	if c > 0 {
		m.coef = mat.NewVecDense(c, nil)
		for j := 0; j < c; j++ {
			m.coef.SetVec(j, beta.AtVec(j))
		}
	}
	m.intercept = beta.AtVec(c)
	m.nObs = r
	m.nFeatures = c
	m.dfResid = dfResid

	m.SetFitted()
	return nil
}

func tTest(b, se float64, dist distuv.StudentsT) (t, p float64) {
	switch {
	case se > 0:
		t = b / se
	case b == 0:
		return 0, 1
	default:
		return math.Copysign(math.Inf(1), b), 0
	}
	return t, 2 * dist.Survival(math.Abs(t))
}

// rankOf は計画行列の数値的ランクを特異値から求める
func rankOf(X mat.Matrix, tol float64) int {
	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}
	cutoff := tol * values[0]
	rank := 0
	for _, s := range values {
		if s > cutoff {
			rank++
		}
	}
	return rank
}

// Predict は入力データに対する予測を行う
func (m *OLS) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("OLS", "Predict")
	}

	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("OLS.Predict", m.nFeatures, c, 1)
	}

	// 予測: y = X * coef + intercept
	predictions := mat.NewDense(r, 1, nil)
	parallel.Rows(r, func(start, end int) {
		for i := start; i < end; i++ {
			pred := m.intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * m.coef.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})

	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (m *OLS) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("OLS", "Score")
	}

	yPred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	yTrue := mat.NewVecDense(r, nil)
	yHat := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yHat.SetVec(i, yPred.At(i, 0))
	}
	return metrics.R2Score(yTrue, yHat)
}

// Coefficients は学習された係数（切片を除く）を列順に返す
func (m *OLS) Coefficients() []float64 {
	if m.coef == nil {
		return nil
	}
	out := make([]float64, m.coef.Len())
	for i := range out {
		out[i] = m.coef.AtVec(i)
	}
	return out
}

// Intercept は学習された切片を返す
func (m *OLS) Intercept() float64 {
	if !m.IsFitted() {
		return 0
	}
	return m.intercept
}

// StdErrors は係数の標準誤差（切片を除く）を返す
func (m *OLS) StdErrors() []float64 { return head(m.stdErr) }

// TValues は係数のt値（切片を除く）を返す
func (m *OLS) TValues() []float64 { return head(m.tValues) }

// PValues は係数の両側p値（切片を除く）を返す
func (m *OLS) PValues() []float64 { return head(m.pValues) }

// InterceptStats は切片の標準誤差、t値、p値を返す
func (m *OLS) InterceptStats() (stdErr, tValue, pValue float64) {
	if !m.IsFitted() {
		return math.NaN(), math.NaN(), math.NaN()
	}
	k := len(m.stdErr) - 1
	return m.stdErr[k], m.tValues[k], m.pValues[k]
}

// Fitted は学習データに対する当てはめ値を返す
func (m *OLS) Fitted() []float64 { return append([]float64(nil), m.fitted...) }

// Rank は計画行列（切片列を含む）の数値的ランク
func (m *OLS) Rank() int { return m.rank }

// NObs は観測数
func (m *OLS) NObs() int { return m.nObs }

// DFModel はモデル自由度（切片を除く説明変数の数）
func (m *OLS) DFModel() int { return m.nFeatures }

// DFResid は残差自由度 n − k − 1
func (m *OLS) DFResid() int { return m.dfResid }

// R2 は学習データでの決定係数
func (m *OLS) R2() float64 { return m.r2 }

// AdjustedR2 は学習データでの自由度調整済み決定係数
func (m *OLS) AdjustedR2() float64 { return m.adjR2 }

// SSE は残差平方和
func (m *OLS) SSE() float64 { return m.sse }

// RMSE は学習データでの平方根平均二乗誤差
func (m *OLS) RMSE() float64 { return m.rmse }

// MAE は学習データでの平均絶対誤差
func (m *OLS) MAE() float64 { return m.mae }

// Names はWithNamesで与えた列名を返す
func (m *OLS) Names() []string { return append([]string(nil), m.names...) }

func head(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	return append([]float64(nil), v[:len(v)-1]...)
}

var _ model.InferenceModel = (*OLS)(nil)
