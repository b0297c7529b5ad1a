package training

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/diabetes-triage/backend/internal/dataset"
	"github.com/diabetes-triage/backend/internal/model"
	"github.com/diabetes-triage/backend/pkg/logger"
)

const (
	ModelTypeLinear = "linear"
	ModelTypeRidge  = "ridge"
	ModelTypeForest = "rf"

	syntheticRows = 442
	cvFolds       = 5
	forestTrees   = 200
)

// RidgeAlphas is the fixed candidate grid searched with cross-validation.
var RidgeAlphas = []float64{0.1, 1.0, 10.0, 100.0}

type Config struct {
	Version   string
	ModelType string
	OutDir    string
	DataPath  string
	TestSize  float64
	Seed      int64
}

func (c Config) modelPath() string {
	return filepath.Join(c.OutDir, fmt.Sprintf("model_%s.gob", c.Version))
}

func (c Config) metadataPath() string {
	return filepath.Join(c.OutDir, fmt.Sprintf("metrics_%s.json", c.Version))
}

// Run fits the configured regressor, evaluates it on the held-out split and
// persists the artifact plus its metadata sidecar. Nothing is left behind on
// failure: a failed sidecar write removes the already-written artifact.
func Run(cfg Config) (*model.Metadata, error) {
	switch cfg.ModelType {
	case ModelTypeLinear, ModelTypeRidge, ModelTypeForest:
	default:
		return nil, fmt.Errorf("model type must be one of [linear ridge rf], got %q", cfg.ModelType)
	}

	ds, err := loadData(cfg)
	if err != nil {
		return nil, err
	}

	train, test, err := ds.Split(cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}

	logger.Info("Training model",
		zap.String("model_type", cfg.ModelType),
		zap.String("version", cfg.Version),
		zap.Int("train_rows", train.Len()),
		zap.Int("test_rows", test.Len()),
	)

	var alpha float64
	var pipe *model.Pipeline

	switch cfg.ModelType {
	case ModelTypeLinear:
		pipe = model.NewPipeline(model.NewLinearRegression())
	case ModelTypeRidge:
		alpha, err = selectRidgeAlpha(train, cfg.Seed)
		if err != nil {
			return nil, err
		}
		logger.Info("Ridge alpha selected", zap.Float64("alpha", alpha))
		pipe = model.NewPipeline(model.NewRidgeRegression(alpha))
	case ModelTypeForest:
		pipe = model.NewPipeline(model.NewForestRegressor(forestTrees, cfg.Seed))
	}

	if err := pipe.Fit(train.X, train.Y); err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	preds, err := pipe.Predict(test.X)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	rmse := model.RMSE(preds, test.Y)

	yMin, yMax := train.MinMax()
	meta := &model.Metadata{
		Version:      cfg.Version,
		ModelType:    cfg.ModelType,
		RMSE:         rmse,
		RandomState:  cfg.Seed,
		YTrainMin:    yMin,
		YTrainMax:    yMax,
		TrainingDate: time.Now().UTC().Format(time.RFC3339),
		Alpha:        alpha,
	}

	modelPath := cfg.modelPath()
	if err := model.SaveArtifact(modelPath, pipe); err != nil {
		return nil, fmt.Errorf("failed to save model artifact: %w", err)
	}

	if err := meta.Save(cfg.metadataPath()); err != nil {
		os.Remove(modelPath)
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	logger.Info("Training completed",
		zap.Float64("rmse", rmse),
		zap.Float64("y_train_min", yMin),
		zap.Float64("y_train_max", yMax),
		zap.String("model_path", modelPath),
	)
	return meta, nil
}

func loadData(cfg Config) (*dataset.Dataset, error) {
	if cfg.DataPath != "" {
		ds, err := dataset.LoadCSV(cfg.DataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		return ds, nil
	}
	return dataset.Synthetic(syntheticRows, cfg.Seed), nil
}

// selectRidgeAlpha picks the grid candidate with the lowest mean validation
// RMSE over k folds of the training split. Each fold refits the full
// pipeline, so the scaler never sees validation rows.
func selectRidgeAlpha(train *dataset.Dataset, seed int64) (float64, error) {
	folds, err := train.KFolds(cvFolds, seed)
	if err != nil {
		return 0, fmt.Errorf("failed to build cross-validation folds: %w", err)
	}

	best := RidgeAlphas[0]
	bestScore := math.Inf(1)

	for _, alpha := range RidgeAlphas {
		var total float64
		for _, valIdx := range folds {
			fitIdx := train.Complement(valIdx)
			fit := train.Subset(fitIdx)
			val := train.Subset(valIdx)

			pipe := model.NewPipeline(model.NewRidgeRegression(alpha))
			if err := pipe.Fit(fit.X, fit.Y); err != nil {
				return 0, fmt.Errorf("cross-validation fit failed for alpha %g: %w", alpha, err)
			}
			preds, err := pipe.Predict(val.X)
			if err != nil {
				return 0, fmt.Errorf("cross-validation predict failed for alpha %g: %w", alpha, err)
			}
			total += model.RMSE(preds, val.Y)
		}

		score := total / float64(len(folds))
		logger.Debug("Cross-validation score",
			zap.Float64("alpha", alpha),
			zap.Float64("mean_rmse", score),
		)
		if score < bestScore {
			bestScore = score
			best = alpha
		}
	}

	return best, nil
}
