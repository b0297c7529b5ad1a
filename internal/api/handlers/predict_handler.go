package handlers

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/diabetes-triage/backend/internal/metrics"
	"github.com/diabetes-triage/backend/internal/storage/models"
	"github.com/diabetes-triage/backend/internal/triage"
	"github.com/diabetes-triage/backend/pkg/logger"
)

// HistoryReader serves the recent-predictions and stats endpoints; nil when
// the history store is disabled.
type HistoryReader interface {
	GetRecentPredictions(limit int) ([]models.PredictionRecord, error)
	CountByRiskLevel() (map[string]int, error)
}

type PredictHandler struct {
	svc     *triage.Service
	history HistoryReader
}

func NewPredictHandler(svc *triage.Service, history HistoryReader) *PredictHandler {
	return &PredictHandler{
		svc:     svc,
		history: history,
	}
}

// patientRequest uses pointer fields so a missing measurement is
// distinguishable from an explicit zero.
type patientRequest struct {
	ID  string   `json:"id"`
	Age *float64 `json:"age"`
	Sex *float64 `json:"sex"`
	BMI *float64 `json:"bmi"`
	BP  *float64 `json:"bp"`
	S1  *float64 `json:"s1"`
	S2  *float64 `json:"s2"`
	S3  *float64 `json:"s3"`
	S4  *float64 `json:"s4"`
	S5  *float64 `json:"s5"`
	S6  *float64 `json:"s6"`
}

func (r *patientRequest) toPatient() (triage.Patient, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"age", r.Age}, {"sex", r.Sex}, {"bmi", r.BMI}, {"bp", r.BP},
		{"s1", r.S1}, {"s2", r.S2}, {"s3", r.S3}, {"s4", r.S4}, {"s5", r.S5}, {"s6", r.S6},
	}

	var bad []string
	values := make([]float64, len(fields))
	for i, f := range fields {
		if f.value == nil || math.IsNaN(*f.value) || math.IsInf(*f.value, 0) {
			bad = append(bad, f.name)
			continue
		}
		values[i] = *f.value
	}
	if len(bad) > 0 {
		return triage.Patient{}, fmt.Errorf("missing or invalid fields: %s", strings.Join(bad, ", "))
	}

	return triage.Patient{
		ID:  r.ID,
		Age: values[0], Sex: values[1], BMI: values[2], BP: values[3],
		S1: values[4], S2: values[5], S3: values[6], S4: values[7], S5: values[8], S6: values[9],
	}, nil
}

func (h *PredictHandler) HandlePredict(c *fiber.Ctx) error {
	start := time.Now()

	var req patientRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse predict request", zap.Error(err))
		metrics.PredictionsTotal.WithLabelValues("client_error").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	patient, err := req.toPatient()
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("client_error").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	preds, err := h.svc.Predict(c.Context(), []triage.Patient{patient})
	if err != nil {
		return h.predictionError(c, err)
	}

	metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	metrics.PredictionDuration.WithLabelValues("predict").Observe(time.Since(start).Seconds())

	return c.JSON(preds[0])
}

func (h *PredictHandler) HandleBatchPredict(c *fiber.Ctx) error {
	start := time.Now()

	var req struct {
		Patients []patientRequest `json:"patients"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse batch predict request", zap.Error(err))
		metrics.PredictionsTotal.WithLabelValues("client_error").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Patients) == 0 {
		metrics.PredictionsTotal.WithLabelValues("client_error").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "patients list is required",
		})
	}

	patients := make([]triage.Patient, len(req.Patients))
	for i := range req.Patients {
		patient, err := req.Patients[i].toPatient()
		if err != nil {
			metrics.PredictionsTotal.WithLabelValues("client_error").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("patient %d: %s", i, err),
			})
		}
		patients[i] = patient
	}

	preds, err := h.svc.Predict(c.Context(), patients)
	if err != nil {
		return h.predictionError(c, err)
	}

	// highest-risk patients first; stable so tied scores keep input order
	sort.SliceStable(preds, func(a, b int) bool {
		return preds[a].Progression > preds[b].Progression
	})

	metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	metrics.BatchSize.Observe(float64(len(preds)))
	metrics.PredictionDuration.WithLabelValues("predict_batch").Observe(time.Since(start).Seconds())

	return c.JSON(fiber.Map{
		"predictions":    preds,
		"total_patients": len(preds),
	})
}

type predictionRecordResponse struct {
	ID             string  `json:"id"`
	PatientID      string  `json:"patient_id,omitempty"`
	Progression    float64 `json:"progression"`
	RiskScore      float64 `json:"risk_score"`
	RiskLevel      string  `json:"risk_level"`
	Recommendation string  `json:"recommendation"`
	ModelVersion   string  `json:"model_version"`
	CreatedAt      int64   `json:"created_at"`
}

func (h *PredictHandler) HandleHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}

	if h.history == nil {
		return c.JSON(fiber.Map{
			"predictions": []predictionRecordResponse{},
			"total":       0,
		})
	}

	records, err := h.history.GetRecentPredictions(limit)
	if err != nil {
		logger.Error("Failed to read prediction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read prediction history",
		})
	}

	out := make([]predictionRecordResponse, len(records))
	for i, r := range records {
		out[i] = predictionRecordResponse{
			ID:             r.ID,
			PatientID:      r.PatientID,
			Progression:    r.Progression,
			RiskScore:      r.RiskScore,
			RiskLevel:      r.RiskLevel,
			Recommendation: r.Recommendation,
			ModelVersion:   r.ModelVersion,
			CreatedAt:      r.CreatedAt.Unix(),
		}
	}

	return c.JSON(fiber.Map{
		"predictions": out,
		"total":       len(out),
	})
}

func (h *PredictHandler) HandleStats(c *fiber.Ctx) error {
	counts := map[string]int{}
	if h.history != nil {
		var err error
		counts, err = h.history.CountByRiskLevel()
		if err != nil {
			logger.Error("Failed to count predictions", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to count predictions",
			})
		}
	}

	total := 0
	byLevel := fiber.Map{"low": 0, "medium": 0, "high": 0}
	for level, n := range counts {
		byLevel[level] = n
		total += n
	}

	return c.JSON(fiber.Map{
		"by_risk_level": byLevel,
		"total":         total,
	})
}

func (h *PredictHandler) predictionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, triage.ErrModelNotLoaded) {
		metrics.PredictionsTotal.WithLabelValues("unavailable").Inc()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Model not loaded",
		})
	}

	logger.Error("Prediction failed", zap.Error(err))
	metrics.PredictionsTotal.WithLabelValues("error").Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Prediction failed",
	})
}
