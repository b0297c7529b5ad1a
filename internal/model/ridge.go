package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RidgeRegression is L2-regularized least squares solved in closed form via
// Cholesky factorization of the penalized normal equations. The intercept is
// not penalized: features and targets are centered before solving.
type RidgeRegression struct {
	Alpha     float64
	Intercept float64
	Coef      []float64
}

func NewRidgeRegression(alpha float64) *RidgeRegression {
	return &RidgeRegression{Alpha: alpha}
}

func (m *RidgeRegression) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 {
		return fmt.Errorf("ridge regression: empty training set")
	}
	if len(y) != rows {
		return fmt.Errorf("ridge regression: %d rows but %d targets", rows, len(y))
	}

	colMeans := make([]float64, cols)
	for j := 0; j < cols; j++ {
		colMeans[j] = stat.Mean(mat.Col(nil, j, X), nil)
	}
	yMean := stat.Mean(y, nil)

	centered := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			centered.Set(i, j, X.At(i, j)-colMeans[j])
		}
	}
	yc := make([]float64, rows)
	for i, v := range y {
		yc[i] = v - yMean
	}

	// gram = Xc'Xc + alpha*I
	gram := mat.NewSymDense(cols, nil)
	for a := 0; a < cols; a++ {
		for b := a; b < cols; b++ {
			var sum float64
			for i := 0; i < rows; i++ {
				sum += centered.At(i, a) * centered.At(i, b)
			}
			if a == b {
				sum += m.Alpha
			}
			gram.SetSym(a, b, sum)
		}
	}

	xty := mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += centered.At(i, j) * yc[i]
		}
		xty.SetVec(j, sum)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return fmt.Errorf("ridge regression: normal equations not positive definite (alpha=%g)", m.Alpha)
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, xty); err != nil {
		return fmt.Errorf("ridge regression: solve: %w", err)
	}

	m.Coef = make([]float64, cols)
	m.Intercept = yMean
	for j := 0; j < cols; j++ {
		m.Coef[j] = beta.AtVec(j)
		m.Intercept -= m.Coef[j] * colMeans[j]
	}
	return nil
}

func (m *RidgeRegression) Predict(X *mat.Dense) []float64 {
	rows, cols := X.Dims()
	preds := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.Intercept
		for j := 0; j < cols && j < len(m.Coef); j++ {
			v += m.Coef[j] * X.At(i, j)
		}
		preds[i] = v
	}
	return preds
}
