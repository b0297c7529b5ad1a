package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Regressor is a fitted predictor over tabular feature matrices. Implementations
// must be gob-encodable so the trained pipeline can be persisted as an artifact.
type Regressor interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) []float64
}

// LinearRegression is ordinary least squares with an intercept, solved by QR
// factorization of the design matrix.
type LinearRegression struct {
	Intercept float64
	Coef      []float64
}

func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

func (m *LinearRegression) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 {
		return fmt.Errorf("linear regression: empty training set")
	}
	if len(y) != rows {
		return fmt.Errorf("linear regression: %d rows but %d targets", rows, len(y))
	}

	// design matrix with a leading intercept column
	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(rows, y)); err != nil {
		return fmt.Errorf("linear regression: least squares solve: %w", err)
	}

	m.Intercept = beta.AtVec(0)
	m.Coef = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.Coef[j] = beta.AtVec(j + 1)
	}
	return nil
}

func (m *LinearRegression) Predict(X *mat.Dense) []float64 {
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
