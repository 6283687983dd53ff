package analysis

import "github.com/oncallpulse/burnout-meter/internal/types"

// Source identifies the origin of a behavioral signal. The string values
// double as the indicator namespace prefix in aggregated results.
type Source string

const (
	SourceIncident      Source = "incident"
	SourceCode          Source = "github"
	SourceCommunication Source = "slack"
)

// Dimension is one of the three Maslach Burnout Inventory axes.
type Dimension string

const (
	DimEmotionalExhaustion    Dimension = "emotional_exhaustion"
	DimDepersonalization      Dimension = "depersonalization"
	DimPersonalAccomplishment Dimension = "personal_accomplishment"
)

// RiskLevel is the categorical bucket derived from the overall score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DimensionScore is one computed dimension: a clamped 0-10 score, the named
// sub-metrics that produced it, and the factor labels that triggered.
type DimensionScore struct {
	Score               float64            `json:"score"`
	Indicators          map[string]float64 `json:"indicators"`
	ContributingFactors []string           `json:"contributing_factors"`
}

// SourceScores carries one source's dimension scores. A nil dimension means
// the source produces no signal for that dimension; the aggregator skips it
// rather than counting it as zero.
type SourceScores struct {
	Source                 Source
	EmotionalExhaustion    *DimensionScore
	Depersonalization      *DimensionScore
	PersonalAccomplishment *DimensionScore
}

// Dimensions holds the three aggregated dimension scores of one engineer.
type Dimensions struct {
	EmotionalExhaustion    DimensionScore `json:"emotional_exhaustion"`
	Depersonalization      DimensionScore `json:"depersonalization"`
	PersonalAccomplishment DimensionScore `json:"personal_accomplishment"`
}

// KeyMetrics is the presentation-layer summary of incident load.
type KeyMetrics struct {
	TotalIncidents        int     `json:"total_incidents"`
	IncidentsPerWeek      float64 `json:"incidents_per_week"`
	AfterHoursIncidents   int     `json:"after_hours_incidents"`
	AvgResolutionHours    float64 `json:"avg_resolution_hours"`
	ResolutionSuccessRate float64 `json:"resolution_success_rate"`
}

// Statuses of a per-engineer analysis within a batch. A degraded entry keeps
// its slot in the results list so output length always matches input length.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// UserBurnoutAnalysis is the final per-engineer output. Immutable once
// produced; the generation timestamp is metadata attached by the caller.
type UserBurnoutAnalysis struct {
	UserID          string         `json:"user_id"`
	UserName        string         `json:"user_name"`
	UserEmail       string         `json:"user_email"`
	BurnoutScore    float64        `json:"burnout_score"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	Critical        bool           `json:"critical"`
	Dimensions      Dimensions     `json:"dimensions"`
	KeyMetrics      KeyMetrics     `json:"key_metrics"`
	Recommendations []string       `json:"recommendations"`
	DataSources     []Source       `json:"data_sources"`
	SkippedRecords  int            `json:"skipped_records,omitempty"`
	Status          string         `json:"status"`
	Error           string         `json:"error,omitempty"`
	User            types.Engineer `json:"-"`
}
