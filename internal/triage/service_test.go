package triage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/diabetes-triage/backend/internal/dataset"
	"github.com/diabetes-triage/backend/internal/model"
	"github.com/diabetes-triage/backend/internal/storage/models"
)

func fittedPipeline(t *testing.T) *model.Pipeline {
	t.Helper()
	ds := dataset.Synthetic(120, 7)
	pipe := model.NewPipeline(model.NewLinearRegression())
	require.NoError(t, pipe.Fit(ds.X, ds.Y))
	return pipe
}

func samplePatient(id string) Patient {
	return Patient{
		ID:  id,
		Age: 0.0380759064334241, Sex: 0.0506801187398187,
		BMI: 0.0616962065186836, BP: 0.0218723549949558,
		S1: -0.0442234984244464, S2: -0.0348207628376986,
		S3: -0.0434008456520269, S4: -0.00259226199818282,
		S5: 0.0199084208761004, S6: -0.0176461251598052,
	}
}

func TestPredictReturnsBoundedRiskScores(t *testing.T) {
	svc := NewServiceFromPipeline(fittedPipeline(t), &model.Metadata{
		Version: "vtest", YTrainMin: 25, YTrainMax: 346,
	})

	preds, err := svc.Predict(context.Background(), []Patient{samplePatient("p1"), {ID: "p2"}})
	require.NoError(t, err)
	require.Len(t, preds, 2)

	for _, p := range preds {
		assert.GreaterOrEqual(t, p.RiskScore, 0.0)
		assert.LessOrEqual(t, p.RiskScore, 1.0)
		assert.NotEmpty(t, p.RiskLevel)
		assert.NotEmpty(t, p.Recommendation)
	}
	assert.Equal(t, "p1", preds[0].ID)
	assert.Equal(t, "p2", preds[1].ID)
}

func TestPredictDeterministic(t *testing.T) {
	svc := NewServiceFromPipeline(fittedPipeline(t), &model.Metadata{YTrainMin: 25, YTrainMax: 346})

	first, err := svc.Predict(context.Background(), []Patient{samplePatient("a")})
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), []Patient{samplePatient("a")})
	require.NoError(t, err)

	assert.Equal(t, first[0].Progression, second[0].Progression)
	assert.Equal(t, first[0].RiskScore, second[0].RiskScore)
}

func TestPredictModelNotLoaded(t *testing.T) {
	svc := NewService(Options{
		ModelPath:    filepath.Join(t.TempDir(), "missing.gob"),
		MetadataPath: filepath.Join(t.TempDir(), "missing.json"),
	})

	assert.False(t, svc.ModelLoaded())

	_, err := svc.Predict(context.Background(), []Patient{samplePatient("x")})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredictStubFallback(t *testing.T) {
	svc := NewService(Options{
		ModelPath:    filepath.Join(t.TempDir(), "missing.gob"),
		MetadataPath: filepath.Join(t.TempDir(), "missing.json"),
		FallbackStub: true,
	})

	assert.False(t, svc.ModelLoaded())

	preds, err := svc.Predict(context.Background(), []Patient{samplePatient("x"), samplePatient("y")})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	for _, p := range preds {
		assert.Equal(t, 0.0, p.Progression)
		assert.Equal(t, RiskLow, p.RiskLevel)
	}
}

func TestServiceLoadsArtifactFromDisk(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model_v1.gob")
	metaPath := filepath.Join(dir, "metrics_v1.json")

	pipe := fittedPipeline(t)
	require.NoError(t, model.SaveArtifact(modelPath, pipe))
	require.NoError(t, (&model.Metadata{Version: "v1", YTrainMin: 25, YTrainMax: 346}).Save(metaPath))

	svc := NewService(Options{ModelPath: modelPath, MetadataPath: metaPath})
	assert.True(t, svc.ModelLoaded())
	assert.Equal(t, "v1", svc.ModelVersion())

	preds, err := svc.Predict(context.Background(), []Patient{samplePatient("p")})
	require.NoError(t, err)

	want, err := pipe.Predict(toMatrix(samplePatient("p")))
	require.NoError(t, err)
	assert.InDelta(t, want[0], preds[0].Progression, 1e-9)
}

type fakeRecorder struct {
	records []*models.PredictionRecord
}

func (f *fakeRecorder) InsertPrediction(rec *models.PredictionRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeCache struct {
	data map[string]Prediction
	hits int
}

func (f *fakeCache) GetPrediction(_ context.Context, key string, out interface{}) (bool, error) {
	p, ok := f.data[key]
	if !ok {
		return false, nil
	}
	f.hits++
	*(out.(*Prediction)) = p
	return true, nil
}

func (f *fakeCache) SetPrediction(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.data[key] = value.(Prediction)
	return nil
}

func TestPredictRecordsHistoryAndUsesCache(t *testing.T) {
	recorder := &fakeRecorder{}
	cache := &fakeCache{data: make(map[string]Prediction)}

	svc := NewServiceFromPipeline(fittedPipeline(t), &model.Metadata{Version: "v2", YTrainMin: 25, YTrainMax: 346})
	svc.history = recorder
	svc.cache = cache
	svc.cacheTTL = time.Minute

	first, err := svc.Predict(context.Background(), []Patient{samplePatient("p1")})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)

	second, err := svc.Predict(context.Background(), []Patient{samplePatient("p1")})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first[0].Progression, second[0].Progression)
	assert.Equal(t, "p1", second[0].ID)

	// both served predictions are recorded, cached or not
	require.Len(t, recorder.records, 2)
	assert.Equal(t, "p1", recorder.records[0].PatientID)
	assert.Equal(t, "v2", recorder.records[0].ModelVersion)
	assert.NotEmpty(t, recorder.records[0].ID)
}

func toMatrix(p Patient) *mat.Dense {
	X := mat.NewDense(1, dataset.NumFeatures, nil)
	X.SetRow(0, p.Features())
	return X
}

func TestPredictEmptyBatch(t *testing.T) {
	svc := NewServiceFromPipeline(fittedPipeline(t), nil)
	preds, err := svc.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}
