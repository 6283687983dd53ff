package analysis

import (
	"time"

	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// IncidentScorer computes the three dimension scores from incident load.
// This is the mandatory source: every engineer gets incident scores even if
// they have no incidents (a documented neutral baseline).
type IncidentScorer struct {
	cfg config.ScoringConfig
}

func NewIncidentScorer(cfg config.ScoringConfig) *IncidentScorer {
	return &IncidentScorer{cfg: cfg}
}

// incidentStats are the window-level raw metrics derived from an engineer's
// incident list. Malformed records (missing creation timestamp) are skipped,
// never fatal.
type incidentStats struct {
	Total            int
	Skipped          int
	PerWeek          float64
	AfterHours       int
	AfterHoursPct    float64
	AvgResolutionHrs float64
	SuccessRate      float64
	EscalationRate   float64
	SoloRate         float64
	AvgAckMinutes    float64
	AckObserved      bool
	SeverityPerWeek  float64
}

// Neutral sub-scores for an engineer with zero incidents in the window.
// No incidents is no evidence of exhaustion or depersonalization (0), and no
// evidence either way on accomplishment (midpoint 5).
const (
	neutralExhaustion     = 0.0
	neutralDepersonal     = 0.0
	neutralAccomplishment = 5.0
)

// Score produces the incident-source dimension scores plus the window stats
// that feed the key-metrics summary.
func (s *IncidentScorer) Score(incidents []types.IncidentRecord) (SourceScores, incidentStats) {
	st := s.computeStats(incidents)

	if st.Total == 0 {
		return SourceScores{
			Source: SourceIncident,
			EmotionalExhaustion: &DimensionScore{
				Score:               neutralExhaustion,
				Indicators:          map[string]float64{"incident_count": 0},
				ContributingFactors: nil,
			},
			Depersonalization: &DimensionScore{
				Score:               neutralDepersonal,
				Indicators:          map[string]float64{"incident_count": 0},
				ContributingFactors: nil,
			},
			PersonalAccomplishment: &DimensionScore{
				Score:               neutralAccomplishment,
				Indicators:          map[string]float64{"incident_count": 0},
				ContributingFactors: []string{"No incident activity in analysis window"},
			},
		}, st
	}

	return SourceScores{
		Source:                 SourceIncident,
		EmotionalExhaustion:    s.scoreExhaustion(st),
		Depersonalization:      s.scoreDepersonalization(st),
		PersonalAccomplishment: s.scoreAccomplishment(st),
	}, st
}

func (s *IncidentScorer) computeStats(incidents []types.IncidentRecord) incidentStats {
	var st incidentStats
	weeks := float64(s.cfg.WindowDays) / 7.0

	var resHours []float64
	var ackMinutes []float64
	var severityLoad float64
	var resolved, escalated, solo int

	for i := range incidents {
		inc := &incidents[i]
		if inc.CreatedAt.IsZero() {
			st.Skipped++
			continue
		}
		st.Total++

		if s.afterHours(inc.CreatedAt) {
			st.AfterHours++
		}
		if inc.Escalated {
			escalated++
		}
		if len(inc.AssigneeIDs) <= 1 {
			solo++
		}

		if inc.Resolved() {
			resolved++
			resHours = append(resHours, inc.ResolvedAt.Sub(inc.CreatedAt).Hours())
		}
		if inc.AcknowledgedAt != nil && !inc.AcknowledgedAt.IsZero() {
			ackMinutes = append(ackMinutes, inc.AcknowledgedAt.Sub(inc.CreatedAt).Minutes())
		}

		if w, ok := s.cfg.SeverityWeights[inc.Severity]; ok {
			severityLoad += w
		} else {
			severityLoad += 1
		}
	}

	total := float64(st.Total)
	st.PerWeek = ratio(total, weeks)
	st.AfterHoursPct = ratio(float64(st.AfterHours), total)
	st.AvgResolutionHrs = mean(resHours)
	st.SuccessRate = ratio(float64(resolved), total)
	st.EscalationRate = ratio(float64(escalated), total)
	st.SoloRate = ratio(float64(solo), total)
	st.SeverityPerWeek = ratio(severityLoad, weeks)
	if len(ackMinutes) > 0 {
		st.AvgAckMinutes = mean(ackMinutes)
		st.AckObserved = true
	}
	return st
}

func (s *IncidentScorer) afterHours(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	h := t.Hour()
	return h < s.cfg.BusinessHours.Start || h >= s.cfg.BusinessHours.End
}

func (s *IncidentScorer) scoreExhaustion(st incidentStats) *DimensionScore {
	t := s.cfg.Thresholds

	frequency := thresholdScore(st.PerWeek, t.IncidentsPerWeekMedium, t.IncidentsPerWeekHigh)
	afterHours := thresholdScore(st.AfterHoursPct, t.AfterHoursPctMedium, t.AfterHoursPctHigh)
	resolution := thresholdScore(st.AvgResolutionHrs, t.ResolutionHoursMedium, t.ResolutionHoursHigh)
	workload := thresholdScore(st.SeverityPerWeek, t.IncidentsPerWeekMedium, t.IncidentsPerWeekHigh)

	score := clampScore(0.30*frequency + 0.25*afterHours + 0.25*resolution + 0.20*workload)

	var factors []string
	if frequency >= 6 {
		factors = append(factors, "High incident frequency")
	}
	if afterHours >= 6 {
		factors = append(factors, "Frequent after-hours incident response")
	}
	if resolution >= 6 {
		factors = append(factors, "Long incident resolution times")
	}
	if workload >= 6 {
		factors = append(factors, "Heavy severity-weighted incident load")
	}

	return &DimensionScore{
		Score: round2(score),
		Indicators: map[string]float64{
			"incident_count":             float64(st.Total),
			"incidents_per_week":         round2(st.PerWeek),
			"after_hours_percentage":     round2(st.AfterHoursPct * 100),
			"avg_resolution_hours":       round2(st.AvgResolutionHrs),
			"severity_weighted_per_week": round2(st.SeverityPerWeek),
			"frequency_score":            round2(frequency),
			"after_hours_score":          round2(afterHours),
			"resolution_time_score":      round2(resolution),
			"workload_score":             round2(workload),
		},
		ContributingFactors: factors,
	}
}

func (s *IncidentScorer) scoreDepersonalization(st incidentStats) *DimensionScore {
	t := s.cfg.Thresholds

	escalation := thresholdScore(st.EscalationRate, t.EscalationRateMedium, t.EscalationRateHigh)
	// Solo handling of most incidents is the measurable proxy for dropping
	// out of collaborative incident roles.
	solo := thresholdScore(st.SoloRate, 0.5, 0.9)

	score := clampScore(0.4*escalation + 0.6*solo)

	var factors []string
	if escalation >= 6 {
		factors = append(factors, "High incident escalation rate")
	}
	if solo >= 6 {
		factors = append(factors, "Mostly solo incident handling")
	}

	return &DimensionScore{
		Score: round2(score),
		Indicators: map[string]float64{
			"escalation_rate":      round2(st.EscalationRate),
			"solo_assignment_rate": round2(st.SoloRate),
			"escalation_score":     round2(escalation),
			"solo_score":           round2(solo),
		},
		ContributingFactors: factors,
	}
}

// scoreAccomplishment is higher-is-better; the composer inverts it exactly
// once when blending into the overall score.
func (s *IncidentScorer) scoreAccomplishment(st incidentStats) *DimensionScore {
	success := st.SuccessRate * 10

	// Acknowledgement within 15 minutes is full marks, two hours or more is
	// zero. Engineers with no acknowledgement data sit at the midpoint.
	responsiveness := 5.0
	if st.AckObserved {
		switch {
		case st.AvgAckMinutes <= 15:
			responsiveness = 10
		case st.AvgAckMinutes >= 120:
			responsiveness = 0
		default:
			responsiveness = 10 * (120 - st.AvgAckMinutes) / 105
		}
	}

	score := clampScore(0.6*success + 0.4*responsiveness)

	var factors []string
	if success <= 3 {
		factors = append(factors, "Low incident resolution success rate")
	}
	if responsiveness <= 3 {
		factors = append(factors, "Slow incident acknowledgement")
	}

	return &DimensionScore{
		Score: round2(score),
		Indicators: map[string]float64{
			"resolution_success_rate": round2(st.SuccessRate),
			"avg_acknowledge_minutes": round2(st.AvgAckMinutes),
			"success_score":           round2(success),
			"responsiveness_score":    round2(responsiveness),
		},
		ContributingFactors: factors,
	}
}
