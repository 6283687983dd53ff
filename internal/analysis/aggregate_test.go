package analysis

import (
	"math"
	"testing"

	"github.com/oncallpulse/burnout-meter/internal/config"
)

func TestAggregateRenormalizesOverPresentSources(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	sources := []SourceScores{
		{
			Source:            SourceIncident,
			Depersonalization: &DimensionScore{Score: 8, Indicators: map[string]float64{"count": 4}},
		},
		{
			Source:            SourceCommunication,
			Depersonalization: &DimensionScore{Score: 4, Indicators: map[string]float64{"count": 9}},
		},
	}

	got := agg.Aggregate(sources, DimDepersonalization)

	// Weights 0.7 and 0.15 renormalized over 0.85.
	want := (0.7*8 + 0.15*4) / 0.85
	if math.Abs(got.Score-want) > 0.01 {
		t.Errorf("aggregated score = %v, want %v", got.Score, want)
	}
}

func TestAggregateExhaustionNeverDilutedByOptionalSources(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	incident := SourceScores{
		Source:              SourceIncident,
		EmotionalExhaustion: &DimensionScore{Score: 8, Indicators: map[string]float64{}},
	}

	alone := agg.Aggregate([]SourceScores{incident}, DimEmotionalExhaustion)

	withChat := agg.Aggregate([]SourceScores{
		incident,
		{
			Source:              SourceCommunication,
			EmotionalExhaustion: &DimensionScore{Score: 4, Indicators: map[string]float64{}},
		},
	}, DimEmotionalExhaustion)

	if withChat.Score < alone.Score {
		t.Errorf("chat evidence lowered exhaustion: alone=%v with=%v", alone.Score, withChat.Score)
	}

	// The chat score slots into the headroom above the incident anchor:
	// 8 + 4*(10-8)/10 = 8.8, then renormalized over 0.7+0.15.
	want := (0.7*8 + 0.15*8.8) / 0.85
	if math.Abs(withChat.Score-want) > 0.01 {
		t.Errorf("aggregated exhaustion = %v, want %v", withChat.Score, want)
	}
}

func TestAggregateExhaustionRisesWithCorroboration(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	incident := SourceScores{
		Source:              SourceIncident,
		EmotionalExhaustion: &DimensionScore{Score: 7, Indicators: map[string]float64{}},
	}
	quiet := agg.Aggregate([]SourceScores{
		incident,
		{Source: SourceCode, EmotionalExhaustion: &DimensionScore{Score: 2, Indicators: map[string]float64{}}},
	}, DimEmotionalExhaustion)
	loud := agg.Aggregate([]SourceScores{
		incident,
		{Source: SourceCode, EmotionalExhaustion: &DimensionScore{Score: 6, Indicators: map[string]float64{}}},
	}, DimEmotionalExhaustion)

	if loud.Score <= quiet.Score {
		t.Errorf("stronger code evidence must raise exhaustion: quiet=%v loud=%v", quiet.Score, loud.Score)
	}
}

func TestAggregateSingleSourcePassthrough(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	sources := []SourceScores{
		{
			Source:              SourceIncident,
			EmotionalExhaustion: &DimensionScore{Score: 6.4, Indicators: map[string]float64{}},
		},
	}

	got := agg.Aggregate(sources, DimEmotionalExhaustion)
	if got.Score != 6.4 {
		t.Errorf("single-source aggregate = %v, want the source score 6.4", got.Score)
	}
}

func TestAggregateSkipsNilDimensions(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	// Code source has no depersonalization signal; the incident score must
	// pass through untouched instead of being averaged against zero.
	sources := []SourceScores{
		{
			Source:            SourceIncident,
			Depersonalization: &DimensionScore{Score: 7, Indicators: map[string]float64{}},
		},
		{
			Source:              SourceCode,
			EmotionalExhaustion: &DimensionScore{Score: 9, Indicators: map[string]float64{}},
		},
	}

	got := agg.Aggregate(sources, DimDepersonalization)
	if got.Score != 7 {
		t.Errorf("aggregate with absent source = %v, want 7", got.Score)
	}
}

func TestAggregatePrefixesIndicators(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	sources := []SourceScores{
		{
			Source: SourceIncident,
			EmotionalExhaustion: &DimensionScore{
				Score:               5,
				Indicators:          map[string]float64{"after_hours_score": 7},
				ContributingFactors: []string{"Frequent after-hours incident response"},
			},
		},
		{
			Source: SourceCommunication,
			EmotionalExhaustion: &DimensionScore{
				Score:      3,
				Indicators: map[string]float64{"after_hours_score": 2},
			},
		},
	}

	got := agg.Aggregate(sources, DimEmotionalExhaustion)

	if got.Indicators["incident_after_hours_score"] != 7 {
		t.Errorf("incident indicator missing or wrong: %v", got.Indicators)
	}
	if got.Indicators["slack_after_hours_score"] != 2 {
		t.Errorf("slack indicator missing or wrong: %v", got.Indicators)
	}
	if len(got.ContributingFactors) != 1 {
		t.Errorf("factors = %v, want union of 1", got.ContributingFactors)
	}
}

func TestAggregateNoSources(t *testing.T) {
	agg := NewAggregator(config.Default().SourceWeights)

	got := agg.Aggregate(nil, DimEmotionalExhaustion)
	if got.Score != 0 {
		t.Errorf("empty aggregate score = %v, want 0", got.Score)
	}
	if got.Indicators == nil {
		t.Error("empty aggregate must still carry a non-nil indicator map")
	}
}
