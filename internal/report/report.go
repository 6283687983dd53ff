package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/oncallpulse/burnout-meter/internal/analysis"
)

// Org health status bands.
const (
	StatusCritical   = "CRITICAL"
	StatusHighRisk   = "HIGH_RISK"
	StatusMediumRisk = "MEDIUM_RISK"
	StatusHealthy    = "HEALTHY"
)

// RiskDistribution counts engineers per risk level.
type RiskDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Summary is the org-level rollup of a batch analysis run.
type Summary struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	WindowDays       int              `json:"window_days"`
	TotalAnalyzed    int              `json:"total_analyzed"`
	Degraded         int              `json:"degraded"`
	Status           string           `json:"status"`
	RiskDistribution RiskDistribution `json:"risk_distribution"`
	AverageScore     float64          `json:"average_score"`
	AverageActive    float64          `json:"average_score_active"`
	CriticalCount    int              `json:"critical_count"`
	TopRisks         []EngineerRisk   `json:"top_risks"`
	Recommendations  []string         `json:"recommendations"`
}

// EngineerRisk is one row of the highest-risk listing.
type EngineerRisk struct {
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	Score     float64 `json:"score"`
	RiskLevel string  `json:"risk_level"`
	Critical  bool    `json:"critical"`
}

// Generator builds org summaries from per-engineer analyses.
type Generator struct {
	topN int
}

// NewGenerator creates a summary generator listing up to topN highest-risk
// engineers.
func NewGenerator(topN int) *Generator {
	if topN <= 0 {
		topN = 5
	}
	return &Generator{topN: topN}
}

// Summarize rolls up a batch of analyses into the org view. Degraded entries
// count toward totals but are excluded from score averages and distribution.
func (g *Generator) Summarize(results []analysis.UserBurnoutAnalysis, windowDays int, now time.Time) Summary {
	s := Summary{
		GeneratedAt:   now.UTC(),
		WindowDays:    windowDays,
		TotalAnalyzed: len(results),
	}

	var scored []analysis.UserBurnoutAnalysis
	var sum float64
	var activeSum float64
	active := 0

	for _, r := range results {
		if r.Status == analysis.StatusDegraded {
			s.Degraded++
			continue
		}
		scored = append(scored, r)
		sum += r.BurnoutScore

		switch r.RiskLevel {
		case analysis.RiskHigh:
			s.RiskDistribution.High++
		case analysis.RiskMedium:
			s.RiskDistribution.Medium++
		default:
			s.RiskDistribution.Low++
		}
		if r.Critical {
			s.CriticalCount++
		}
		if r.KeyMetrics.TotalIncidents > 0 {
			activeSum += r.BurnoutScore
			active++
		}
	}

	if len(scored) > 0 {
		s.AverageScore = round2(sum / float64(len(scored)))
	}
	if active > 0 {
		s.AverageActive = round2(activeSum / float64(active))
	}

	s.Status = orgStatus(s.RiskDistribution, len(scored))
	s.TopRisks = g.topRisks(scored)
	s.Recommendations = orgRecommendations(s, len(scored))
	return s
}

// orgStatus maps the risk distribution to a health band. Three or more
// high-risk engineers, or more than a quarter of the team at high risk,
// marks the org critical.
func orgStatus(dist RiskDistribution, total int) string {
	if total == 0 {
		return StatusHealthy
	}
	highPct := float64(dist.High) / float64(total)
	medPct := float64(dist.Medium) / float64(total)

	switch {
	case dist.High >= 3 || highPct > 0.25:
		return StatusCritical
	case dist.High > 0:
		return StatusHighRisk
	case medPct > 0.40:
		return StatusMediumRisk
	default:
		return StatusHealthy
	}
}

func (g *Generator) topRisks(scored []analysis.UserBurnoutAnalysis) []EngineerRisk {
	ranked := make([]analysis.UserBurnoutAnalysis, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].BurnoutScore != ranked[j].BurnoutScore {
			return ranked[i].BurnoutScore > ranked[j].BurnoutScore
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	n := g.topN
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]EngineerRisk, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, EngineerRisk{
			UserID:    r.UserID,
			UserName:  r.UserName,
			Score:     r.BurnoutScore,
			RiskLevel: string(r.RiskLevel),
			Critical:  r.Critical,
		})
	}
	return out
}

func orgRecommendations(s Summary, total int) []string {
	var recs []string
	switch s.Status {
	case StatusCritical:
		recs = append(recs,
			"Multiple engineers at high burnout risk: review on-call staffing and rotation frequency immediately",
			"Schedule recovery time for high-risk engineers before their next on-call shift")
	case StatusHighRisk:
		recs = append(recs,
			"Check in with high-risk engineers and rebalance upcoming on-call schedules")
	case StatusMediumRisk:
		recs = append(recs,
			"A large share of the team shows elevated risk: audit alert noise and incident routing")
	}
	if s.CriticalCount > 0 {
		recs = append(recs, fmt.Sprintf("%d engineer(s) exceed the critical threshold and need immediate intervention", s.CriticalCount))
	}
	if s.Degraded > 0 {
		recs = append(recs, fmt.Sprintf("%d analysis entries were degraded: verify data source connectivity and re-run", s.Degraded))
	}
	if len(recs) == 0 && total > 0 {
		recs = append(recs, "Team burnout indicators are within healthy ranges: maintain current rotation practices")
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
