package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は決定係数を計算できるモデルのインターフェース
type Scorer interface {
	// Score は決定係数（R²）を返す
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
	IsFitted() bool
}

// InferenceModel は係数ごとの推測統計量（標準誤差、p値）を提供する線形モデル
type InferenceModel interface {
	Regressor
	// Coefficients は切片を除く係数を列順に返す
	Coefficients() []float64
	// Intercept は切片を返す
	Intercept() float64
	// PValues は切片を除く係数の両側p値を列順に返す
	PValues() []float64
}
