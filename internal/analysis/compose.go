package analysis

import (
	"github.com/oncallpulse/burnout-meter/internal/config"
)

// Composer blends the three aggregated dimension scores into the single
// overall burnout score and maps it to a risk level.
//
// Personal accomplishment is carried raw (higher is better) through every
// scorer and the aggregator, and inverted exactly once here.
type Composer struct {
	weights config.DimensionWeights
	risk    config.RiskThresholds
}

func NewComposer(weights config.DimensionWeights, risk config.RiskThresholds) *Composer {
	return &Composer{weights: weights, risk: risk}
}

// Compose returns the overall score clamped to [0, 10]. Dimension weights
// are expected to sum to 1; that is the caller's responsibility and is only
// sanity checked at configuration load.
func (c *Composer) Compose(d Dimensions) float64 {
	overall := d.EmotionalExhaustion.Score*c.weights.EmotionalExhaustion +
		d.Depersonalization.Score*c.weights.Depersonalization +
		(10-d.PersonalAccomplishment.Score)*c.weights.PersonalAccomplishment
	return round2(clampScore(overall))
}

// RiskFor buckets an overall score using the configured thresholds.
func (c *Composer) RiskFor(score float64) RiskLevel {
	switch {
	case score >= c.risk.High:
		return RiskHigh
	case score >= c.risk.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Critical reports whether the score crosses the stricter escalation
// threshold, distinct from the general high-risk cutoff.
func (c *Composer) Critical(score float64) bool {
	return score >= c.risk.Critical
}
