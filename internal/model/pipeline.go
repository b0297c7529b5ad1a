package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pipeline couples the standard scaler with a regressor, matching how the
// artifact was trained: the scaler is fit on the training split only and every
// prediction passes through the same transform.
type Pipeline struct {
	Scaler *StandardScaler
	Reg    Regressor
}

func NewPipeline(reg Regressor) *Pipeline {
	return &Pipeline{Scaler: &StandardScaler{}, Reg: reg}
}

func (p *Pipeline) Fit(X *mat.Dense, y []float64) error {
	p.Scaler.Fit(X)
	return p.Reg.Fit(p.Scaler.Transform(X), y)
}

func (p *Pipeline) Predict(X *mat.Dense) ([]float64, error) {
	if p.Reg == nil || p.Scaler == nil || !p.Scaler.Fitted() {
		return nil, fmt.Errorf("pipeline is not fitted")
	}
	return p.Reg.Predict(p.Scaler.Transform(X)), nil
}

// RMSE is the root mean squared error between predictions and targets.
func RMSE(pred, truth []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		d := pred[i] - truth[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(pred)))
}
