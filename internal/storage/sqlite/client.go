package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/diabetes-triage/backend/internal/storage/models"
	"github.com/diabetes-triage/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		patient_id TEXT,
		progression REAL NOT NULL,
		risk_score REAL NOT NULL,
		risk_level TEXT NOT NULL,
		recommendation TEXT,
		model_version TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
	CREATE INDEX IF NOT EXISTS idx_predictions_level ON predictions(risk_level);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertPrediction(rec *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (id, patient_id, progression, risk_score, risk_level, recommendation, model_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		rec.ID,
		rec.PatientID,
		rec.Progression,
		rec.RiskScore,
		rec.RiskLevel,
		rec.Recommendation,
		rec.ModelVersion,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	logger.Debug("Prediction recorded",
		zap.String("prediction_id", rec.ID),
		zap.String("risk_level", rec.RiskLevel),
	)
	return nil
}

func (c *Client) GetRecentPredictions(limit int) ([]models.PredictionRecord, error) {
	query := `
		SELECT id, patient_id, progression, risk_score, risk_level, recommendation, model_version, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.PatientID, &r.Progression, &r.RiskScore, &r.RiskLevel, &r.Recommendation, &r.ModelVersion, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, nil
}

// CountByRiskLevel summarizes stored predictions per triage bucket.
func (c *Client) CountByRiskLevel() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT risk_level, COUNT(*) FROM predictions GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[level] = n
	}
	return counts, nil
}
