package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BusinessHours is the configured working window in local hours [Start, End).
type BusinessHours struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// BurnoutThresholds holds the medium/high cutoffs used to scale raw incident
// metrics onto the 0-10 sub-score range.
type BurnoutThresholds struct {
	IncidentsPerWeekHigh   float64 `yaml:"incidents_per_week_high" json:"incidents_per_week_high"`
	IncidentsPerWeekMedium float64 `yaml:"incidents_per_week_medium" json:"incidents_per_week_medium"`
	AfterHoursPctHigh      float64 `yaml:"after_hours_pct_high" json:"after_hours_pct_high"`
	AfterHoursPctMedium    float64 `yaml:"after_hours_pct_medium" json:"after_hours_pct_medium"`
	ResolutionHoursHigh    float64 `yaml:"resolution_hours_high" json:"resolution_hours_high"`
	ResolutionHoursMedium  float64 `yaml:"resolution_hours_medium" json:"resolution_hours_medium"`
	EscalationRateHigh     float64 `yaml:"escalation_rate_high" json:"escalation_rate_high"`
	EscalationRateMedium   float64 `yaml:"escalation_rate_medium" json:"escalation_rate_medium"`
}

// DimensionWeights weighs the three Maslach dimensions at composition time.
// Expected to sum to 1; this is the caller's responsibility and only sanity
// checked, not renormalized.
type DimensionWeights struct {
	EmotionalExhaustion    float64 `yaml:"emotional_exhaustion" json:"emotional_exhaustion"`
	Depersonalization      float64 `yaml:"depersonalization" json:"depersonalization"`
	PersonalAccomplishment float64 `yaml:"personal_accomplishment" json:"personal_accomplishment"`
}

// SourceWeights weighs the three data sources during aggregation. The
// aggregator renormalizes over the sources actually present for an engineer.
type SourceWeights struct {
	Incident      float64 `yaml:"incident" json:"incident"`
	Code          float64 `yaml:"code" json:"code"`
	Communication float64 `yaml:"communication" json:"communication"`
}

// RiskThresholds maps the overall score to a categorical risk level.
// Critical is a separate, stricter cutoff used for escalation reporting.
type RiskThresholds struct {
	Critical float64 `yaml:"critical" json:"critical"`
	High     float64 `yaml:"high" json:"high"`
	Medium   float64 `yaml:"medium" json:"medium"`
}

// ScoringConfig is the single immutable configuration value for a run. It is
// constructed once, validated up front, and passed explicitly to every
// component; nothing mutates it mid-run.
type ScoringConfig struct {
	WindowDays       int                `yaml:"window_days" json:"window_days"`
	BusinessHours    BusinessHours      `yaml:"business_hours" json:"business_hours"`
	SeverityWeights  map[string]float64 `yaml:"severity_weights" json:"severity_weights"`
	Thresholds       BurnoutThresholds  `yaml:"burnout_thresholds" json:"burnout_thresholds"`
	DimensionWeights DimensionWeights   `yaml:"dimension_weights" json:"dimension_weights"`
	SourceWeights    SourceWeights      `yaml:"source_weights" json:"source_weights"`
	RiskThresholds   RiskThresholds     `yaml:"risk_level_thresholds" json:"risk_level_thresholds"`
}

// Default returns the stock scoring configuration.
func Default() ScoringConfig {
	return ScoringConfig{
		WindowDays:    30,
		BusinessHours: BusinessHours{Start: 9, End: 17},
		SeverityWeights: map[string]float64{
			"sev1": 3.0,
			"sev2": 2.0,
			"sev3": 1.5,
			"sev4": 1.0,
		},
		Thresholds: BurnoutThresholds{
			// Sustained paging at one incident per weekday is crisis-level
			// load; the frequency scale saturates there.
			IncidentsPerWeekHigh:   5,
			IncidentsPerWeekMedium: 2.5,
			AfterHoursPctHigh:      0.30,
			AfterHoursPctMedium:    0.15,
			ResolutionHoursHigh:    4,
			ResolutionHoursMedium:  2,
			EscalationRateHigh:     0.40,
			EscalationRateMedium:   0.20,
		},
		DimensionWeights: DimensionWeights{
			EmotionalExhaustion:    0.4,
			Depersonalization:      0.3,
			PersonalAccomplishment: 0.3,
		},
		SourceWeights: SourceWeights{
			Incident:      0.7,
			Code:          0.15,
			Communication: 0.15,
		},
		RiskThresholds: RiskThresholds{
			Critical: 8,
			High:     6,
			Medium:   4,
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (ScoringConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

const weightTolerance = 0.01

// Validate fails fast on configuration that would silently corrupt every
// result mid-batch: inverted thresholds, non-positive weights, source
// weights that do not sum to 1.
func (c ScoringConfig) Validate() error {
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.BusinessHours.Start < 0 || c.BusinessHours.End > 24 || c.BusinessHours.Start >= c.BusinessHours.End {
		return fmt.Errorf("business_hours [%d, %d) is not a valid window", c.BusinessHours.Start, c.BusinessHours.End)
	}
	for tier, w := range c.SeverityWeights {
		if w <= 0 {
			return fmt.Errorf("severity weight for %s must be positive, got %v", tier, w)
		}
	}

	t := c.Thresholds
	pairs := []struct {
		name         string
		medium, high float64
	}{
		{"incidents_per_week", t.IncidentsPerWeekMedium, t.IncidentsPerWeekHigh},
		{"after_hours_pct", t.AfterHoursPctMedium, t.AfterHoursPctHigh},
		{"resolution_hours", t.ResolutionHoursMedium, t.ResolutionHoursHigh},
		{"escalation_rate", t.EscalationRateMedium, t.EscalationRateHigh},
	}
	for _, p := range pairs {
		if p.medium <= 0 || p.high <= p.medium {
			return fmt.Errorf("threshold %s requires 0 < medium < high, got medium=%v high=%v", p.name, p.medium, p.high)
		}
	}

	dw := c.DimensionWeights
	if dw.EmotionalExhaustion <= 0 || dw.Depersonalization <= 0 || dw.PersonalAccomplishment <= 0 {
		return fmt.Errorf("dimension weights must be positive")
	}
	dimSum := dw.EmotionalExhaustion + dw.Depersonalization + dw.PersonalAccomplishment
	if dimSum < 0.5 || dimSum > 1.5 {
		return fmt.Errorf("dimension weights sum %v is outside the sane range [0.5, 1.5]", dimSum)
	}

	sw := c.SourceWeights
	if sw.Incident <= 0 || sw.Code < 0 || sw.Communication < 0 {
		return fmt.Errorf("incident source weight must be positive and optional source weights non-negative")
	}
	srcSum := sw.Incident + sw.Code + sw.Communication
	if srcSum < 1-weightTolerance || srcSum > 1+weightTolerance {
		return fmt.Errorf("source weights must sum to 1, got %v", srcSum)
	}

	r := c.RiskThresholds
	if r.Medium <= 0 || r.High <= r.Medium || r.Critical < r.High {
		return fmt.Errorf("risk thresholds require 0 < medium < high <= critical, got medium=%v high=%v critical=%v", r.Medium, r.High, r.Critical)
	}
	return nil
}
