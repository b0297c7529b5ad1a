package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestArtifactRoundTrip(t *testing.T) {
	X, y := ridgeTrainingData()

	regressors := map[string]Regressor{
		"linear": NewLinearRegression(),
		"ridge":  NewRidgeRegression(1.0),
		"rf":     NewForestRegressor(10, 42),
	}

	for name, reg := range regressors {
		t.Run(name, func(t *testing.T) {
			pipe := NewPipeline(reg)
			require.NoError(t, pipe.Fit(X, y))

			want, err := pipe.Predict(X)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "model.gob")
			require.NoError(t, SaveArtifact(path, pipe))

			loaded, err := LoadArtifact(path)
			require.NoError(t, err)

			got, err := loaded.Predict(X)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.gob"))
	assert.Error(t, err)
}

func TestMetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")

	meta := &Metadata{
		Version:     "v0.3",
		ModelType:   "ridge",
		RMSE:        53.7,
		RandomState: 42,
		YTrainMin:   25,
		YTrainMax:   346,
		Alpha:       10,
	}
	require.NoError(t, meta.Save(path))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)
}

func TestLoadMetadataMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadMetadata(path)
	assert.Error(t, err)
}

func TestPipelineNotFitted(t *testing.T) {
	pipe := NewPipeline(NewLinearRegression())
	_, err := pipe.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Error(t, err)
}
