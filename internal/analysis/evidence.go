package analysis

import (
	"github.com/oncallpulse/burnout-meter/internal/config"
)

// EvidenceGenerator turns scores and aggregated indicators into
// recommendations. Pure rule table: identical input always yields identical
// output, which the evidence tests rely on.
type EvidenceGenerator struct {
	risk config.RiskThresholds
}

func NewEvidenceGenerator(risk config.RiskThresholds) *EvidenceGenerator {
	return &EvidenceGenerator{risk: risk}
}

// Recommendations produces the tiered guidance for one engineer, ordered
// from the overall-score tier down to source-specific tactical suggestions.
func (g *EvidenceGenerator) Recommendations(overall float64, dims Dimensions) []string {
	recs := g.tierRecommendations(overall)
	recs = append(recs, g.tacticalRecommendations(dims)...)
	return recs
}

func (g *EvidenceGenerator) tierRecommendations(overall float64) []string {
	switch {
	case overall >= g.risk.Critical:
		return []string{
			"Immediate action required - schedule an urgent workload review",
			"Create a workload redistribution plan",
			"Consider mandatory time off",
			"Evaluate team capacity and consider additional support",
		}
	case overall >= g.risk.High:
		return []string{
			"Schedule a 1-on-1 within 24 hours",
			"Review and adjust on-call rotation schedules",
			"Redistribute incident assignments away from this engineer",
		}
	case overall >= g.risk.Medium:
		return []string{
			"Monitor for escalation over the next review period",
			"Review incident trends and identify recurring patterns",
			"Consider process improvements to reduce incident load",
		}
	default:
		return []string{
			"Continue regular monitoring",
			"Maintain current incident response processes",
		}
	}
}

// tacticalRecommendations checks well-known indicator keys in the
// aggregated dimensions. Rules fire in a fixed order for determinism.
func (g *EvidenceGenerator) tacticalRecommendations(dims Dimensions) []string {
	var recs []string

	ee := dims.EmotionalExhaustion.Indicators
	dp := dims.Depersonalization.Indicators

	if ee["incident_after_hours_score"] >= 6 {
		recs = append(recs, "Review on-call handoffs to curb after-hours incident response")
	}
	if ee["github_after_hours_score"] >= 6 {
		recs = append(recs, "Set boundaries for after-hours coding")
	}
	if ee["github_weekend_score"] >= 6 {
		recs = append(recs, "Protect weekends from routine development work")
	}
	if ee["slack_after_hours_score"] >= 6 {
		recs = append(recs, "Set strict boundaries for after-hours chat usage")
	}
	if ee["slack_volume_score"] >= 7 {
		recs = append(recs, "Reduce communication load - delegate or batch messages")
	}
	if dp["slack_dm_ratio"] > 0.4 {
		recs = append(recs, "Move more discussions to public channels for team visibility")
	}
	if dp["slack_channel_diversity"] > 12 {
		recs = append(recs, "Focus on fewer channels to reduce context switching")
	}
	if dp["slack_collaboration_score"] >= 6 {
		recs = append(recs, "Encourage more collaborative discussion participation")
	}

	return recs
}
