package analysis

import (
	"testing"
	"time"

	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

func TestCodeScorerOnlyExhaustion(t *testing.T) {
	scorer := NewCodeScorer(config.Default())

	scores := scorer.Score(&types.CodeActivityRecord{Login: "dev"})

	if scores.EmotionalExhaustion == nil {
		t.Fatal("exhaustion must always be present for the code source")
	}
	if scores.Depersonalization != nil {
		t.Error("code source must not produce a depersonalization score")
	}
	if scores.PersonalAccomplishment != nil {
		t.Error("code source must not produce an accomplishment score")
	}
}

func TestCodeScorerEmptyRecord(t *testing.T) {
	scorer := NewCodeScorer(config.Default())

	scores := scorer.Score(&types.CodeActivityRecord{Login: "dev"})
	if got := scores.EmotionalExhaustion.Score; got != 0 {
		t.Errorf("empty record exhaustion = %v, want 0", got)
	}
}

func TestVolumeScoreBands(t *testing.T) {
	tests := []struct {
		perWeek  float64
		expected float64
	}{
		{0, 0},
		{3, 1},
		{10, 4},
		{20, 7},
		{30, 10},
	}
	for _, tt := range tests {
		if got := volumeScore(tt.perWeek); got != tt.expected {
			t.Errorf("volumeScore(%v) = %v, want %v", tt.perWeek, got, tt.expected)
		}
	}
}

func TestCountClusteredCommits(t *testing.T) {
	base := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		offsets  []time.Duration
		expected int
	}{
		{"no commits", nil, 0},
		{"single commit", []time.Duration{0}, 0},
		{"spread out", []time.Duration{0, 8 * time.Hour, 16 * time.Hour}, 0},
		{"one burst", []time.Duration{0, 1 * time.Hour, 2 * time.Hour}, 2},
		{"unsorted input", []time.Duration{2 * time.Hour, 0, 1 * time.Hour}, 2},
		{"burst then gap", []time.Duration{0, 3 * time.Hour, 20 * time.Hour}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commits := make([]types.Commit, len(tt.offsets))
			for i, off := range tt.offsets {
				commits[i] = types.Commit{Timestamp: base.Add(off)}
			}
			if got := countClusteredCommits(commits); got != tt.expected {
				t.Errorf("countClusteredCommits = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCodeScorerAfterHoursRaisesExhaustion(t *testing.T) {
	scorer := NewCodeScorer(config.Default())
	base := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

	build := func(afterHours bool) *types.CodeActivityRecord {
		rec := &types.CodeActivityRecord{Login: "dev"}
		for i := 0; i < 20; i++ {
			rec.Commits = append(rec.Commits, types.Commit{
				Timestamp:  base.Add(time.Duration(i) * 24 * time.Hour),
				Repository: "core/api",
				AfterHours: afterHours,
			})
		}
		return rec
	}

	daytime := scorer.Score(build(false)).EmotionalExhaustion.Score
	nightly := scorer.Score(build(true)).EmotionalExhaustion.Score

	if nightly <= daytime {
		t.Errorf("after-hours commits should raise exhaustion: daytime %v, nightly %v", daytime, nightly)
	}
}

func TestCodeScorerIndicators(t *testing.T) {
	scorer := NewCodeScorer(config.Default())
	base := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

	rec := &types.CodeActivityRecord{
		Login: "dev",
		Commits: []types.Commit{
			{Timestamp: base, Repository: "core/api", Weekend: false},
			{Timestamp: base.Add(time.Hour), Repository: "core/web", Weekend: true},
		},
		PullRequests: []types.PullRequest{
			{CreatedAt: base, AfterHours: false},
		},
	}

	ind := scorer.Score(rec).EmotionalExhaustion.Indicators
	if ind["total_commits"] != 2 {
		t.Errorf("total_commits = %v, want 2", ind["total_commits"])
	}
	if ind["total_pull_requests"] != 1 {
		t.Errorf("total_pull_requests = %v, want 1", ind["total_pull_requests"])
	}
	if ind["repository_diversity"] != 2 {
		t.Errorf("repository_diversity = %v, want 2", ind["repository_diversity"])
	}
	if ind["weekend_commit_percentage"] != 50 {
		t.Errorf("weekend_commit_percentage = %v, want 50", ind["weekend_commit_percentage"])
	}
	if ind["clustered_commits"] != 1 {
		t.Errorf("clustered_commits = %v, want 1", ind["clustered_commits"])
	}
}
