package analysis

import (
	"github.com/oncallpulse/burnout-meter/internal/config"
)

// Aggregator blends per-source dimension scores into one score per
// dimension. Weights are renormalized over the sources actually present for
// the engineer and dimension, so effective weights always sum to 1 and no
// weight mass is silently dropped.
type Aggregator struct {
	weights config.SourceWeights
}

func NewAggregator(weights config.SourceWeights) *Aggregator {
	return &Aggregator{weights: weights}
}

func (a *Aggregator) weightFor(src Source) float64 {
	switch src {
	case SourceIncident:
		return a.weights.Incident
	case SourceCode:
		return a.weights.Code
	case SourceCommunication:
		return a.weights.Communication
	default:
		return 0
	}
}

// Aggregate combines the scores for one dimension. Sources are passed in a
// fixed order (incident, code, communication) so indicator and factor union
// order is deterministic. Entries with a nil score are absent and excluded
// from the renormalization.
func (a *Aggregator) Aggregate(sources []SourceScores, dim Dimension) DimensionScore {
	type present struct {
		src    Source
		score  *DimensionScore
		weight float64
	}

	var avail []present
	totalWeight := 0.0
	for _, s := range sources {
		ds := s.dimension(dim)
		if ds == nil {
			continue
		}
		w := a.weightFor(s.Source)
		if w <= 0 {
			continue
		}
		avail = append(avail, present{src: s.Source, score: ds, weight: w})
		totalWeight += w
	}

	if len(avail) == 0 || totalWeight == 0 {
		return DimensionScore{Indicators: map[string]float64{}}
	}

	// Exhaustion is anchored on the incident signal: optional sources can
	// corroborate and raise it, never dilute it. Each optional score is
	// remapped into the headroom above the anchor before weighting.
	anchor := -1.0
	if dim == DimEmotionalExhaustion {
		for _, p := range avail {
			if p.src == SourceIncident {
				anchor = p.score.Score
				break
			}
		}
	}

	agg := DimensionScore{Indicators: make(map[string]float64)}
	for _, p := range avail {
		v := p.score.Score
		if anchor >= 0 && p.src != SourceIncident {
			v = anchor + v*(10-anchor)/10
		}
		agg.Score += (p.weight / totalWeight) * v
		prefix := string(p.src) + "_"
		for k, v := range p.score.Indicators {
			agg.Indicators[prefix+k] = v
		}
		agg.ContributingFactors = append(agg.ContributingFactors, p.score.ContributingFactors...)
	}
	agg.Score = round2(clampScore(agg.Score))
	return agg
}

func (s *SourceScores) dimension(dim Dimension) *DimensionScore {
	switch dim {
	case DimEmotionalExhaustion:
		return s.EmotionalExhaustion
	case DimDepersonalization:
		return s.Depersonalization
	case DimPersonalAccomplishment:
		return s.PersonalAccomplishment
	default:
		return nil
	}
}
