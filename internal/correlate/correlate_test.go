package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oncallpulse/burnout-meter/internal/types"
)

func TestMatchPriority(t *testing.T) {
	c := &Correlator{
		Overrides:   map[string]string{"jordan@example.com": "override-login"},
		EmailIndex:  map[string]string{"jordan@example.com": "indexed-login", "kim@example.com": "kim-indexed"},
		KnownLogins: []string{"jordanlee"},
	}

	// Override beats both the email index and name heuristics.
	got := c.Match(types.Engineer{Name: "Jordan Lee", Email: "Jordan@Example.com"})
	assert.Equal(t, "override-login", got)

	// Email index beats name heuristics.
	got = c.Match(types.Engineer{Name: "Kim Park", Email: "kim@example.com"})
	assert.Equal(t, "kim-indexed", got)
}

func TestMatchByNamePatterns(t *testing.T) {
	tests := []struct {
		name     string
		user     types.Engineer
		logins   []string
		expected string
	}{
		{
			"first plus last",
			types.Engineer{Name: "Jordan Lee", Email: "j@example.com"},
			[]string{"jordanlee"},
			"jordanlee",
		},
		{
			"dotted",
			types.Engineer{Name: "Jordan Lee", Email: "j@example.com"},
			[]string{"jordan.lee"},
			"jordan.lee",
		},
		{
			"initial plus last",
			types.Engineer{Name: "Jordan Lee", Email: "j@example.com"},
			[]string{"jlee"},
			"jlee",
		},
		{
			"email prefix",
			types.Engineer{Name: "", Email: "jlee42@example.com"},
			[]string{"jlee42"},
			"jlee42",
		},
		{
			"case preserved from known logins",
			types.Engineer{Name: "Jordan Lee", Email: "j@example.com"},
			[]string{"JordanLee"},
			"JordanLee",
		},
		{
			"middle name ignored",
			types.Engineer{Name: "Jordan Quinn Lee", Email: "j@example.com"},
			[]string{"jordanlee"},
			"jordanlee",
		},
		{
			"no candidate matches",
			types.Engineer{Name: "Jordan Lee", Email: "j@example.com"},
			[]string{"someoneelse"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Correlator{KnownLogins: tt.logins}
			assert.Equal(t, tt.expected, c.Match(tt.user))
		})
	}
}

func TestMatchEmptyEmail(t *testing.T) {
	c := &Correlator{KnownLogins: []string{"jordanlee"}}
	assert.Equal(t, "", c.Match(types.Engineer{Name: "Jordan Lee"}))
}

func TestMatchAllAndSummarize(t *testing.T) {
	c := &Correlator{
		EmailIndex:  map[string]string{"a@example.com": "alice-dev"},
		KnownLogins: []string{"bobsmith"},
	}

	users := []types.Engineer{
		{Name: "Alice Jones", Email: "a@example.com"},
		{Name: "Bob Smith", Email: "b@example.com"},
		{Name: "Zed Unknown", Email: "z@example.com"},
		{Name: "Carol Unknown", Email: "c@example.com"},
		{Name: "No Email"},
	}

	matches := c.MatchAll(users)
	assert.Len(t, matches, 4)
	assert.Equal(t, "alice-dev", matches["a@example.com"])
	assert.Equal(t, "bobsmith", matches["b@example.com"])

	report := Summarize(matches)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Matched)
	// Unmatched emails come back sorted for stable reporting.
	assert.Equal(t, []string{"c@example.com", "z@example.com"}, report.Unmatched)
}
