package linear

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows, cols int) (*mat.Dense, *mat.Dense) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	// y = 1 + Σ 0.5(j+1) x_j + 小さなノイズ
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * float64(j+1) * 0.5
		}
		sum += (rng.Float64() - 0.5) * 0.1
		y.Set(i, 0, sum)
	}

	return X, y
}

func BenchmarkOLSFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_50x5", 50, 5},
		{"Small_100x10", 100, 10},
		{"Medium_1000x10", 1000, 10},
		{"Large_5000x20", 5000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := NewOLS().Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNormalEquations(b *testing.B) {
	X, y := createBenchmarkData(200, 8)
	design := mat.NewDense(200, 9, nil)
	for i := 0; i < 200; i++ {
		for j := 0; j < 8; j++ {
			design.Set(i, j, X.At(i, j))
		}
		design.Set(i, 8, 1)
	}
	yv := mat.NewVecDense(200, mat.Col(nil, 0, y))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := NormalEquations(design, yv); err != nil {
			b.Fatal(err)
		}
	}
}
