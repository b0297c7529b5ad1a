package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

func init() {
	gob.Register(&LinearRegression{})
	gob.Register(&RidgeRegression{})
	gob.Register(&ForestRegressor{})
}

// SaveArtifact persists a fitted pipeline as a gob-encoded file, creating the
// parent directory when needed.
func SaveArtifact(path string, p *Pipeline) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a pipeline previously written by SaveArtifact.
func LoadArtifact(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact file: %w", err)
	}
	defer f.Close()

	var p Pipeline
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &p, nil
}
