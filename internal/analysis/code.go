package analysis

import (
	"sort"
	"time"

	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// commitClusterWindow is the gap under which consecutive commits count as a
// stress-driven burst.
const commitClusterWindow = 4 * time.Hour

// CodeScorer derives emotional exhaustion from code platform activity.
// Code activity carries no usable depersonalization or accomplishment
// signal, so this source contributes only the exhaustion dimension; the
// aggregator treats the other two as absent rather than zero. This is a
// known modeling limitation, not an omission.
type CodeScorer struct {
	cfg config.ScoringConfig
}

func NewCodeScorer(cfg config.ScoringConfig) *CodeScorer {
	return &CodeScorer{cfg: cfg}
}

func (s *CodeScorer) Score(rec *types.CodeActivityRecord) SourceScores {
	weeks := float64(s.cfg.WindowDays) / 7.0

	totalCommits := len(rec.Commits)
	totalPRs := len(rec.PullRequests)

	var afterHours, weekend int
	repos := map[string]struct{}{}
	for _, c := range rec.Commits {
		if c.AfterHours {
			afterHours++
		}
		if c.Weekend {
			weekend++
		}
		if c.Repository != "" {
			repos[c.Repository] = struct{}{}
		}
	}

	commitsPerWeek := ratio(float64(totalCommits), weeks)
	prsPerWeek := ratio(float64(totalPRs), weeks)
	afterHoursPct := ratio(float64(afterHours), float64(totalCommits))
	weekendPct := ratio(float64(weekend), float64(totalCommits))
	clustered := countClusteredCommits(rec.Commits)
	clusterRatio := ratio(float64(clustered), float64(totalCommits))

	volume := volumeScore(commitsPerWeek + prsPerWeek)
	afterHoursScore := clampScore(afterHoursPct * 25)
	weekendScore := clampScore(weekendPct * 50)
	clusteringScore := clampScore(clusterRatio * 15)

	score := clampScore(mean([]float64{volume, afterHoursScore, weekendScore, clusteringScore}))

	var factors []string
	if volume >= 7 {
		factors = append(factors, "Very high code output volume")
	}
	if afterHoursScore >= 6 {
		factors = append(factors, "Frequent after-hours coding")
	}
	if weekendScore >= 6 {
		factors = append(factors, "Regular weekend coding activity")
	}
	if clusteringScore >= 6 {
		factors = append(factors, "Stress-driven commit bursts")
	}

	return SourceScores{
		Source: SourceCode,
		EmotionalExhaustion: &DimensionScore{
			Score: round2(score),
			Indicators: map[string]float64{
				"total_commits":                 float64(totalCommits),
				"total_pull_requests":           float64(totalPRs),
				"commits_per_week":              round2(commitsPerWeek),
				"prs_per_week":                  round2(prsPerWeek),
				"after_hours_commit_percentage": round2(afterHoursPct * 100),
				"weekend_commit_percentage":     round2(weekendPct * 100),
				"repository_diversity":          float64(len(repos)),
				"clustered_commits":             float64(clustered),
				"volume_score":                  round2(volume),
				"after_hours_score":             round2(afterHoursScore),
				"weekend_score":                 round2(weekendScore),
				"clustering_score":              round2(clusteringScore),
			},
			ContributingFactors: factors,
		},
	}
}

func volumeScore(perWeek float64) float64 {
	switch {
	case perWeek > 25:
		return 10
	case perWeek > 15:
		return 7
	case perWeek > 5:
		return 4
	case perWeek > 0:
		return 1
	default:
		return 0
	}
}

// countClusteredCommits counts commits landing within the cluster window of
// the previous one, over the time-sorted commit list.
func countClusteredCommits(commits []types.Commit) int {
	if len(commits) < 2 {
		return 0
	}
	ts := make([]time.Time, len(commits))
	for i, c := range commits {
		ts[i] = c.Timestamp
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	clustered := 0
	for i := 1; i < len(ts); i++ {
		if ts[i].Sub(ts[i-1]) <= commitClusterWindow {
			clustered++
		}
	}
	return clustered
}
