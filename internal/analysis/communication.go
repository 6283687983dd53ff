package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// Sentiment compound cutoffs, matching the VADER convention.
const (
	sentimentNegative = -0.05
	sentimentPositive = 0.05
)

// stressKeywords flag messages whose wording signals overload. Matching is
// plain substring on the lowercased text.
var stressKeywords = []string{
	"overwhelmed", "exhausted", "burned out", "burnt out", "swamped", "drowning",
	"stressed", "urgent", "asap", "emergency", "crisis", "stuck",
	"frustrated", "tired", "deadline", "overloaded", "pressure",
}

// CommunicationScorer computes all three dimensions from chat activity.
type CommunicationScorer struct {
	cfg config.ScoringConfig
}

func NewCommunicationScorer(cfg config.ScoringConfig) *CommunicationScorer {
	return &CommunicationScorer{cfg: cfg}
}

// commMetrics are the window-level chat metrics the sub-scores are built on.
type commMetrics struct {
	TotalMessages     int
	PerDay            float64
	AfterHoursPct     float64
	WeekendPct        float64
	ChannelDiversity  int
	DMRatio           float64
	ThreadRate        float64
	AvgMessageLength  float64
	PeakConcentration float64
	ResponsePattern   float64
	AvgSentiment      float64
	NegativeRatio     float64
	PositiveRatio     float64
	StressRatio       float64
	Volatility        float64
}

// Score produces the chat-source dimension scores. A record with no
// messages yields the fixed neutral analysis with an explanatory factor,
// never an error.
func (s *CommunicationScorer) Score(rec *types.CommunicationRecord) SourceScores {
	m := s.computeMetrics(rec)

	if m.TotalMessages == 0 {
		empty := map[string]float64{"total_messages": 0}
		return SourceScores{
			Source: SourceCommunication,
			EmotionalExhaustion: &DimensionScore{
				Score:      0,
				Indicators: empty,
			},
			Depersonalization: &DimensionScore{
				Score:      0,
				Indicators: empty,
			},
			PersonalAccomplishment: &DimensionScore{
				Score:               5,
				Indicators:          empty,
				ContributingFactors: []string{"No chat communication data available"},
			},
		}
	}

	return SourceScores{
		Source:                 SourceCommunication,
		EmotionalExhaustion:    s.scoreExhaustion(m),
		Depersonalization:      s.scoreDepersonalization(m),
		PersonalAccomplishment: s.scoreAccomplishment(m),
	}
}

func (s *CommunicationScorer) computeMetrics(rec *types.CommunicationRecord) commMetrics {
	var m commMetrics
	m.TotalMessages = len(rec.Messages)
	if m.TotalMessages == 0 {
		return m
	}

	var afterHours, weekend, dms, threaded, stress, negative, positive int
	var lengths []float64
	var sentiments []float64
	channels := map[string]struct{}{}
	byHour := map[int]int{}

	for _, msg := range rec.Messages {
		h := msg.Timestamp.Hour()
		byHour[h]++

		if h < s.cfg.BusinessHours.Start || h >= s.cfg.BusinessHours.End {
			afterHours++
		}
		if wd := msg.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
		if msg.DM {
			dms++
		}
		if msg.InThread {
			threaded++
		}
		if msg.ChannelID != "" {
			channels[msg.ChannelID] = struct{}{}
		}

		lengths = append(lengths, float64(len(msg.Text)))
		sentiments = append(sentiments, msg.Sentiment)
		switch {
		case msg.Sentiment <= sentimentNegative:
			negative++
		case msg.Sentiment >= sentimentPositive:
			positive++
		}

		lower := strings.ToLower(msg.Text)
		for _, kw := range stressKeywords {
			if strings.Contains(lower, kw) {
				stress++
				break
			}
		}
	}

	total := float64(m.TotalMessages)
	m.PerDay = ratio(total, float64(s.cfg.WindowDays))
	m.AfterHoursPct = ratio(float64(afterHours), total)
	m.WeekendPct = ratio(float64(weekend), total)
	m.ChannelDiversity = len(channels)
	m.DMRatio = ratio(float64(dms), total)
	m.ThreadRate = ratio(float64(threaded), total)
	m.AvgMessageLength = mean(lengths)
	m.PeakConcentration = peakHourConcentration(byHour)
	m.AvgSentiment = mean(sentiments)
	m.NegativeRatio = ratio(float64(negative), total)
	m.PositiveRatio = ratio(float64(positive), total)
	m.StressRatio = ratio(float64(stress), total)
	m.Volatility = stddev(sentiments)
	m.ResponsePattern = responsePatternScore(m, rec.ReactionsGiven)
	return m
}

// peakHourConcentration is the share of messages in the busiest three hours
// of the day, a proxy for stress bursts.
func peakHourConcentration(byHour map[int]int) float64 {
	if len(byHour) == 0 {
		return 0
	}
	counts := make([]int, 0, len(byHour))
	total := 0
	for _, c := range byHour {
		counts = append(counts, c)
		total += c
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	top := 0
	for i := 0; i < len(counts) && i < 3; i++ {
		top += counts[i]
	}
	return ratio(float64(top), float64(total))
}

// responsePatternScore starts at the neutral midpoint and moves with
// boundary-keeping and engagement signals; clamped to 0-10.
func responsePatternScore(m commMetrics, reactionsGiven int) float64 {
	score := 5.0
	if m.AfterHoursPct > 0.3 {
		score -= 2.0
	}
	if m.WeekendPct > 0.2 {
		score -= 1.5
	}
	if m.AvgMessageLength < 20 {
		score -= 1.0
	}
	if m.DMRatio > 0.4 {
		score -= 1.0
	}
	if m.ThreadRate > 0.3 {
		score += 1.0
	}
	if reactionsGiven > 0 {
		score += 0.5
	}
	return clampScore(score)
}

func (s *CommunicationScorer) scoreExhaustion(m commMetrics) *DimensionScore {
	var volume float64
	switch {
	case m.PerDay > 30:
		volume = 10
	case m.PerDay > 20:
		volume = 7
	case m.PerDay > 10:
		volume = 4
	default:
		volume = 1
	}

	afterHours := clampScore(m.AfterHoursPct * 25)
	weekend := clampScore(m.WeekendPct * 50)
	concentration := clampScore(m.PeakConcentration * 15)
	sentiment := clampScore((-m.AvgSentiment + 1) * 5)
	stress := clampScore(m.StressRatio * 50)
	volatility := clampScore(m.Volatility * 10)

	score := mean([]float64{volume, afterHours, weekend, concentration, sentiment, stress, volatility})

	var factors []string
	if volume >= 7 {
		factors = append(factors, "High message volume")
	}
	if afterHours >= 6 {
		factors = append(factors, "Excessive after-hours communication")
	}
	if weekend >= 6 {
		factors = append(factors, "Weekend work communication")
	}
	if concentration >= 6 {
		factors = append(factors, "High-stress communication bursts")
	}
	if sentiment >= 6 {
		factors = append(factors, "Negative communication sentiment")
	}
	if stress >= 6 {
		factors = append(factors, "High stress language indicators")
	}
	if volatility >= 6 {
		factors = append(factors, "Emotional volatility in communication")
	}

	return &DimensionScore{
		Score: round2(clampScore(score)),
		Indicators: map[string]float64{
			"total_messages":         float64(m.TotalMessages),
			"messages_per_day":       round2(m.PerDay),
			"after_hours_percentage": round2(m.AfterHoursPct * 100),
			"weekend_percentage":     round2(m.WeekendPct * 100),
			"peak_concentration":     round2(m.PeakConcentration),
			"avg_sentiment":          round2(m.AvgSentiment),
			"stress_indicator_ratio": round2(m.StressRatio * 100),
			"sentiment_volatility":   round2(m.Volatility),
			"volume_score":           round2(volume),
			"after_hours_score":      round2(afterHours),
			"weekend_score":          round2(weekend),
			"concentration_score":    round2(concentration),
			"sentiment_score":        round2(sentiment),
			"stress_score":           round2(stress),
			"volatility_score":       round2(volatility),
		},
		ContributingFactors: factors,
	}
}

func (s *CommunicationScorer) scoreDepersonalization(m commMetrics) *DimensionScore {
	var collaboration float64
	switch {
	case m.ThreadRate < 0.1:
		collaboration = 8
	case m.ThreadRate < 0.3:
		collaboration = 5
	case m.ThreadRate < 0.5:
		collaboration = 2
	}

	dm := clampScore(m.DMRatio * 20)

	var context float64
	switch {
	case m.ChannelDiversity > 15:
		context = 8
	case m.ChannelDiversity > 10:
		context = 5
	case m.ChannelDiversity > 5:
		context = 2
	}

	var quality float64
	switch {
	case m.AvgMessageLength < 15:
		quality = 8
	case m.AvgMessageLength < 30:
		quality = 4
	case m.AvgMessageLength < 50:
		quality = 1
	}

	negativeSentiment := clampScore(m.NegativeRatio * 25)

	score := mean([]float64{collaboration, dm, context, quality, negativeSentiment})

	var factors []string
	if collaboration >= 6 {
		factors = append(factors, "Reduced collaborative participation")
	}
	if dm >= 6 {
		factors = append(factors, "High private message usage")
	}
	if context >= 6 {
		factors = append(factors, "Excessive context switching")
	}
	if quality >= 6 {
		factors = append(factors, "Declining communication quality")
	}
	if negativeSentiment >= 6 {
		factors = append(factors, "Negative communication sentiment")
	}

	return &DimensionScore{
		Score: round2(clampScore(score)),
		Indicators: map[string]float64{
			"thread_participation_rate": round2(m.ThreadRate),
			"dm_ratio":                  round2(m.DMRatio),
			"channel_diversity":         float64(m.ChannelDiversity),
			"avg_message_length":        round2(m.AvgMessageLength),
			"negative_sentiment_ratio":  round2(m.NegativeRatio * 100),
			"collaboration_score":       round2(collaboration),
			"dm_score":                  round2(dm),
			"context_switching_score":   round2(context),
			"quality_score":             round2(quality),
			"negative_sentiment_score":  round2(negativeSentiment),
		},
		ContributingFactors: factors,
	}
}

func (s *CommunicationScorer) scoreAccomplishment(m commMetrics) *DimensionScore {
	pattern := m.ResponsePattern

	// Messages per day inside the configured sweet spot score highest; both
	// silence and flooding score lower.
	var activity float64
	switch {
	case m.PerDay >= 5 && m.PerDay <= 15:
		activity = 8
	case m.PerDay >= 3 && m.PerDay <= 20:
		activity = 6
	case m.PerDay > 0:
		activity = 3
	}

	var engagement float64
	switch {
	case m.ThreadRate > 0.5:
		engagement = 8
	case m.ThreadRate > 0.3:
		engagement = 6
	case m.ThreadRate > 0.1:
		engagement = 3
	default:
		engagement = 1
	}

	presence := clamp(m.PerDay*2, 0, 8)
	positiveSentiment := clampScore((m.AvgSentiment + 1) * 5)

	score := mean([]float64{pattern, activity, engagement, presence, positiveSentiment})

	var factors []string
	if pattern <= 3 {
		factors = append(factors, "Poor communication response patterns")
	}
	if activity <= 3 {
		factors = append(factors, "Suboptimal activity levels")
	}
	if engagement <= 3 {
		factors = append(factors, "Low collaborative engagement")
	}
	if presence <= 3 {
		factors = append(factors, "Inconsistent communication presence")
	}
	if positiveSentiment <= 3 {
		factors = append(factors, "Low positive communication sentiment")
	}

	return &DimensionScore{
		Score: round2(clampScore(score)),
		Indicators: map[string]float64{
			"response_pattern_score":   round2(pattern),
			"healthy_activity_level":   round2(activity),
			"collaborative_engagement": round2(engagement),
			"consistent_presence":      round2(presence),
			"positive_sentiment_score": round2(positiveSentiment),
			"avg_sentiment":            round2(m.AvgSentiment),
			"positive_sentiment_ratio": round2(m.PositiveRatio * 100),
		},
		ContributingFactors: factors,
	}
}
