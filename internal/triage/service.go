package triage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/diabetes-triage/backend/internal/dataset"
	"github.com/diabetes-triage/backend/internal/metrics"
	"github.com/diabetes-triage/backend/internal/model"
	"github.com/diabetes-triage/backend/internal/storage/models"
	"github.com/diabetes-triage/backend/pkg/logger"
	"github.com/diabetes-triage/backend/pkg/utils"
)

// ErrModelNotLoaded is returned by Predict while the service is degraded
// (artifact missing or unreadable and no stub fallback configured).
var ErrModelNotLoaded = errors.New("model not loaded")

type Patient struct {
	ID  string
	Age float64
	Sex float64
	BMI float64
	BP  float64
	S1  float64
	S2  float64
	S3  float64
	S4  float64
	S5  float64
	S6  float64
}

// Features returns the measurement values in dataset column order.
func (p Patient) Features() []float64 {
	return []float64{p.Age, p.Sex, p.BMI, p.BP, p.S1, p.S2, p.S3, p.S4, p.S5, p.S6}
}

type Prediction struct {
	ID             string    `json:"id,omitempty"`
	Progression    float64   `json:"progression"`
	RiskScore      float64   `json:"risk_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
}

// Recorder persists served predictions. Failures are logged, never surfaced.
type Recorder interface {
	InsertPrediction(rec *models.PredictionRecord) error
}

// Cache holds per-patient predictions keyed by model version and features.
type Cache interface {
	GetPrediction(ctx context.Context, key string, out interface{}) (bool, error)
	SetPrediction(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Options struct {
	ModelPath    string
	MetadataPath string
	FallbackStub bool
	History      Recorder
	Cache        Cache
	CacheTTL     time.Duration
}

// Service holds the read-only model artifact and metadata for the lifetime of
// the process. It is constructed once at startup and shared by all handlers.
type Service struct {
	pipe     *model.Pipeline
	meta     *model.Metadata
	stub     bool
	history  Recorder
	cache    Cache
	cacheTTL time.Duration
}

// NewService loads the artifact and metadata once. A missing or unreadable
// artifact leaves the service degraded (or in stub mode when configured);
// the process keeps serving either way.
func NewService(opts Options) *Service {
	s := &Service{
		meta:     model.DefaultMetadata(),
		history:  opts.History,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}

	if _, err := os.Stat(opts.ModelPath); err == nil {
		pipe, err := model.LoadArtifact(opts.ModelPath)
		if err != nil {
			logger.Error("Failed to load model artifact", zap.String("path", opts.ModelPath), zap.Error(err))
		} else {
			s.pipe = pipe
			logger.Info("Model artifact loaded", zap.String("path", opts.ModelPath))
		}
	} else {
		logger.Warn("Model artifact not found", zap.String("path", opts.ModelPath))
	}

	if _, err := os.Stat(opts.MetadataPath); err == nil {
		meta, err := model.LoadMetadata(opts.MetadataPath)
		if err != nil {
			logger.Warn("Failed to parse model metadata, using defaults",
				zap.String("path", opts.MetadataPath), zap.Error(err))
		} else {
			s.meta = meta
		}
	}

	if s.pipe == nil && opts.FallbackStub {
		s.stub = true
		logger.Warn("Serving stub zero predictions until a model artifact is trained")
	}

	metrics.SetModelLoaded(s.pipe != nil)
	return s
}

// NewServiceFromPipeline wires an already-fitted pipeline, bypassing artifact
// files. Used by tests and embedded callers.
func NewServiceFromPipeline(pipe *model.Pipeline, meta *model.Metadata) *Service {
	if meta == nil {
		meta = model.DefaultMetadata()
	}
	return &Service{pipe: pipe, meta: meta}
}

func (s *Service) ModelLoaded() bool {
	return s.pipe != nil
}

func (s *Service) ModelVersion() string {
	return s.meta.Version
}

// Predict scores a batch of patients, preserving input order. Derived values
// (risk score, level, recommendation) come from the loaded metadata and fixed
// thresholds; served predictions are cached and recorded best-effort.
func (s *Service) Predict(ctx context.Context, patients []Patient) ([]Prediction, error) {
	if s.pipe == nil && !s.stub {
		return nil, ErrModelNotLoaded
	}
	if len(patients) == 0 {
		return []Prediction{}, nil
	}

	results := make([]Prediction, len(patients))
	keys := make([]string, len(patients))
	var misses []int

	for i, p := range patients {
		if s.cache == nil {
			misses = append(misses, i)
			continue
		}
		keys[i] = utils.HashFeatures(s.meta.Version, p.Features())
		var cached Prediction
		hit, err := s.cache.GetPrediction(ctx, keys[i], &cached)
		if err != nil {
			logger.Warn("Prediction cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("prediction").Inc()
			cached.ID = p.ID
			results[i] = cached
			continue
		}
		metrics.CacheMisses.WithLabelValues("prediction").Inc()
		misses = append(misses, i)
	}

	if len(misses) > 0 {
		raws, err := s.score(misses, patients)
		if err != nil {
			return nil, err
		}
		for k, i := range misses {
			raw := raws[k]
			level, recommendation := ClassifyRisk(raw)
			results[i] = Prediction{
				ID:             patients[i].ID,
				Progression:    raw,
				RiskScore:      RiskScore(raw, s.meta.YTrainMin, s.meta.YTrainMax),
				RiskLevel:      level,
				Recommendation: recommendation,
			}
			if s.cache != nil {
				toCache := results[i]
				toCache.ID = ""
				if err := s.cache.SetPrediction(ctx, keys[i], toCache, s.cacheTTL); err != nil {
					logger.Warn("Failed to cache prediction", zap.Error(err))
				}
			}
		}
	}

	for i := range results {
		metrics.RiskLevelTotal.WithLabelValues(string(results[i].RiskLevel)).Inc()
		metrics.ProgressionScore.Observe(results[i].Progression)
		s.record(patients[i].ID, results[i])
	}

	return results, nil
}

func (s *Service) score(misses []int, patients []Patient) ([]float64, error) {
	if s.pipe == nil {
		// stub mode: deterministic zero output
		return make([]float64, len(misses)), nil
	}

	X := mat.NewDense(len(misses), dataset.NumFeatures, nil)
	for k, i := range misses {
		X.SetRow(k, patients[i].Features())
	}

	raws, err := s.pipe.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return raws, nil
}

func (s *Service) record(patientID string, pred Prediction) {
	if s.history == nil {
		return
	}
	rec := &models.PredictionRecord{
		ID:             uuid.New().String(),
		PatientID:      patientID,
		Progression:    pred.Progression,
		RiskScore:      pred.RiskScore,
		RiskLevel:      string(pred.RiskLevel),
		Recommendation: pred.Recommendation,
		ModelVersion:   s.meta.Version,
		CreatedAt:      time.Now(),
	}
	if err := s.history.InsertPrediction(rec); err != nil {
		logger.Warn("Failed to record prediction", zap.Error(err))
	}
}
