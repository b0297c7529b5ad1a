package triage

// RiskLevel is the categorical triage bucket derived from the raw progression
// score. The thresholds apply to the model's native output scale, not to the
// normalized risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	mediumThreshold = 100.0
	highThreshold   = 200.0
)

const (
	recommendLow    = "Routine follow-up - next scheduled appointment"
	recommendMedium = "Schedule follow-up within 3 months"
	recommendHigh   = "Urgent follow-up needed within 2 weeks"
)

// RiskScore normalizes a raw progression value into [0,1] against the
// training-set target bounds. A degenerate range (max <= min) falls back to a
// divisor of 1 instead of dividing by zero.
func RiskScore(raw, yMin, yMax float64) float64 {
	denom := yMax - yMin
	if denom <= 0 {
		denom = 1.0
	}
	score := (raw - yMin) / denom
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ClassifyRisk buckets a raw progression value. Bands are closed on the lower
// end: low < 100, medium [100,200), high >= 200.
func ClassifyRisk(raw float64) (RiskLevel, string) {
	switch {
	case raw < mediumThreshold:
		return RiskLow, recommendLow
	case raw < highThreshold:
		return RiskMedium, recommendMedium
	default:
		return RiskHigh, recommendHigh
	}
}
