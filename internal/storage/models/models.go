package models

import "time"

// PredictionRecord is one served prediction in the history store.
type PredictionRecord struct {
	ID             string
	PatientID      string
	Progression    float64
	RiskScore      float64
	RiskLevel      string
	Recommendation string
	ModelVersion   string
	CreatedAt      time.Time
}
