package analysis

import (
	"testing"

	"github.com/oncallpulse/burnout-meter/internal/config"
)

func TestTierRecommendations(t *testing.T) {
	gen := NewEvidenceGenerator(config.Default().RiskThresholds)

	tests := []struct {
		name    string
		overall float64
		first   string
		count   int
	}{
		{"critical tier", 8.5, "Immediate action required - schedule an urgent workload review", 4},
		{"high tier", 7.2, "Schedule a 1-on-1 within 24 hours", 3},
		{"medium tier", 5.0, "Monitor for escalation over the next review period", 3},
		{"low tier", 1.0, "Continue regular monitoring", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := gen.Recommendations(tt.overall, Dimensions{})
			if len(recs) != tt.count {
				t.Fatalf("got %d recommendations, want %d: %v", len(recs), tt.count, recs)
			}
			if recs[0] != tt.first {
				t.Errorf("first recommendation = %q, want %q", recs[0], tt.first)
			}
		})
	}
}

func TestTacticalRecommendations(t *testing.T) {
	gen := NewEvidenceGenerator(config.Default().RiskThresholds)

	dims := Dimensions{
		EmotionalExhaustion: DimensionScore{
			Indicators: map[string]float64{
				"incident_after_hours_score": 7,
				"github_weekend_score":       6.5,
				"slack_volume_score":         8,
			},
		},
		Depersonalization: DimensionScore{
			Indicators: map[string]float64{
				"slack_dm_ratio": 0.55,
			},
		},
	}

	recs := gen.Recommendations(1.0, dims)

	// Two tier recommendations for the low band, then the tactical rules in
	// their fixed firing order.
	want := []string{
		"Continue regular monitoring",
		"Maintain current incident response processes",
		"Review on-call handoffs to curb after-hours incident response",
		"Protect weekends from routine development work",
		"Reduce communication load - delegate or batch messages",
		"Move more discussions to public channels for team visibility",
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d recommendations, want %d: %v", len(recs), len(want), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("recommendation[%d] = %q, want %q", i, recs[i], want[i])
		}
	}
}

func TestTacticalRecommendationsQuietProfile(t *testing.T) {
	gen := NewEvidenceGenerator(config.Default().RiskThresholds)

	dims := Dimensions{
		EmotionalExhaustion: DimensionScore{Indicators: map[string]float64{"incident_after_hours_score": 2}},
		Depersonalization:   DimensionScore{Indicators: map[string]float64{"slack_dm_ratio": 0.1}},
	}

	recs := gen.Recommendations(1.0, dims)
	if len(recs) != 2 {
		t.Errorf("quiet profile should get only the tier recommendations, got %v", recs)
	}
}
