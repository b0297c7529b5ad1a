package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Metadata is the JSON sidecar written next to the model artifact. The
// y_train_min/y_train_max pair parameterizes risk-score normalization at
// serving time; everything else is provenance.
type Metadata struct {
	Version      string  `json:"version"`
	ModelType    string  `json:"model_type"`
	RMSE         float64 `json:"rmse"`
	RandomState  int64   `json:"random_state"`
	YTrainMin    float64 `json:"y_train_min"`
	YTrainMax    float64 `json:"y_train_max"`
	TrainingDate string  `json:"training_date,omitempty"`
	Alpha        float64 `json:"alpha,omitempty"`
}

// DefaultMetadata is the fallback used when the sidecar is missing; the unit
// range keeps normalization well-defined.
func DefaultMetadata() *Metadata {
	return &Metadata{YTrainMin: 0, YTrainMax: 1}
}

func (m *Metadata) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	return &m, nil
}
