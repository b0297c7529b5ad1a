package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardScalerCentersAndScales(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
		5, 500,
	})

	s := &StandardScaler{}
	s.Fit(X)
	out := s.Transform(X)

	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, out)
		assert.InDelta(t, 0, stat.Mean(col, nil), 1e-12)
		assert.InDelta(t, 1, stat.PopStdDev(col, nil), 1e-12)
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	s := &StandardScaler{}
	s.Fit(X)
	out := s.Transform(X)

	// centered but not divided by zero
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, out.At(i, 0))
	}
}

func TestStandardScalerFrozenAfterFit(t *testing.T) {
	train := mat.NewDense(3, 1, []float64{0, 1, 2})
	other := mat.NewDense(2, 1, []float64{10, 20})

	s := &StandardScaler{}
	s.Fit(train)
	mean, std := s.Mean[0], s.Std[0]

	s.Transform(other)
	assert.Equal(t, mean, s.Mean[0])
	assert.Equal(t, std, s.Std[0])
	assert.True(t, s.Fitted())
}
