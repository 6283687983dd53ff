package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// DefaultWorkers bounds the per-engineer fan-out when the caller does not
// specify a pool size.
const DefaultWorkers = 8

// Analyzer orchestrates the full scoring pipeline for a batch of engineers:
// per-source dimension scoring, aggregation, composition and evidence.
// It holds no mutable state; the same input and config always produce
// bit-for-bit identical output.
type Analyzer struct {
	cfg      config.ScoringConfig
	incident *IncidentScorer
	code     *CodeScorer
	comm     *CommunicationScorer
	agg      *Aggregator
	composer *Composer
	evidence *EvidenceGenerator
}

// NewAnalyzer validates the configuration up front; a bad config fails the
// whole run before any engineer is scored.
func NewAnalyzer(cfg config.ScoringConfig) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return &Analyzer{
		cfg:      cfg,
		incident: NewIncidentScorer(cfg),
		code:     NewCodeScorer(cfg),
		comm:     NewCommunicationScorer(cfg),
		agg:      NewAggregator(cfg.SourceWeights),
		composer: NewComposer(cfg.DimensionWeights, cfg.RiskThresholds),
		evidence: NewEvidenceGenerator(cfg.RiskThresholds),
	}, nil
}

// AnalyzeUser scores a single engineer. Optional sources contribute only
// when present; absence degrades the source-weight set, it is not an error.
func (a *Analyzer) AnalyzeUser(in types.EngineerInput) UserBurnoutAnalysis {
	incidentScores, stats := a.incident.Score(in.Incidents)

	sources := []SourceScores{incidentScores}
	dataSources := []Source{SourceIncident}

	if in.CodeActivity != nil {
		sources = append(sources, a.code.Score(in.CodeActivity))
		dataSources = append(dataSources, SourceCode)
	}
	if in.Communication != nil {
		sources = append(sources, a.comm.Score(in.Communication))
		dataSources = append(dataSources, SourceCommunication)
	}

	dims := Dimensions{
		EmotionalExhaustion:    a.agg.Aggregate(sources, DimEmotionalExhaustion),
		Depersonalization:      a.agg.Aggregate(sources, DimDepersonalization),
		PersonalAccomplishment: a.agg.Aggregate(sources, DimPersonalAccomplishment),
	}

	overall := a.composer.Compose(dims)

	return UserBurnoutAnalysis{
		UserID:       in.User.ID,
		UserName:     in.User.Name,
		UserEmail:    in.User.Email,
		BurnoutScore: overall,
		RiskLevel:    a.composer.RiskFor(overall),
		Critical:     a.composer.Critical(overall),
		Dimensions:   dims,
		KeyMetrics: KeyMetrics{
			TotalIncidents:        stats.Total,
			IncidentsPerWeek:      round2(stats.PerWeek),
			AfterHoursIncidents:   stats.AfterHours,
			AvgResolutionHours:    round2(stats.AvgResolutionHrs),
			ResolutionSuccessRate: round2(stats.SuccessRate),
		},
		Recommendations: a.evidence.Recommendations(overall, dims),
		DataSources:     dataSources,
		SkippedRecords:  stats.Skipped,
		Status:          StatusOK,
		User:            in.User,
	}
}

// AnalyzeBatch fans out over engineers with a bounded worker pool and
// collects results in input order. One engineer's failure never halts the
// batch: a panic or cancellation becomes a degraded entry in its slot, so
// the result list length always equals the input length.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []types.EngineerInput, workers int) []UserBurnoutAnalysis {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]UserBurnoutAnalysis, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = a.degraded(inputs[i].User, fmt.Sprintf("analysis cancelled: %v", err))
				return nil
			}
			defer func() {
				if r := recover(); r != nil {
					results[i] = a.degraded(inputs[i].User, fmt.Sprintf("analysis panicked: %v", r))
				}
			}()
			results[i] = a.AnalyzeUser(inputs[i])
			return nil
		})
	}
	// Workers never return errors; failures are recorded in their slots.
	_ = g.Wait()
	return results
}

// degraded builds the placeholder entry for a failed analysis: the neutral
// baseline scores with the failure reason attached.
func (a *Analyzer) degraded(user types.Engineer, reason string) UserBurnoutAnalysis {
	dims := Dimensions{
		EmotionalExhaustion:    DimensionScore{Indicators: map[string]float64{}},
		Depersonalization:      DimensionScore{Indicators: map[string]float64{}},
		PersonalAccomplishment: DimensionScore{Score: neutralAccomplishment, Indicators: map[string]float64{}},
	}
	overall := a.composer.Compose(dims)
	return UserBurnoutAnalysis{
		UserID:       user.ID,
		UserName:     user.Name,
		UserEmail:    user.Email,
		BurnoutScore: overall,
		RiskLevel:    a.composer.RiskFor(overall),
		Dimensions:   dims,
		DataSources:  []Source{},
		Status:       StatusDegraded,
		Error:        reason,
		User:         user,
	}
}
