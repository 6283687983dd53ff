// Package correlate links engineers to their code-platform identity.
// Strategies run in priority order: manual override mapping, a mined
// commit-email index, then name-pattern heuristics. An engineer the chain
// cannot match simply has no code-activity source; that is absence, not
// zero activity.
package correlate

import (
	"sort"
	"strings"

	"github.com/oncallpulse/burnout-meter/internal/types"
)

// Correlator resolves engineer emails to code-platform logins.
type Correlator struct {
	// Manual lowercase email -> login overrides from configuration. Always
	// wins over discovery.
	Overrides map[string]string
	// EmailIndex maps lowercase commit-author emails to logins, mined from
	// public profiles and commit authorship by the collector.
	EmailIndex map[string]string
	// KnownLogins are the candidate logins for heuristic name matching.
	KnownLogins []string
}

// Match returns the login for one engineer, or "" when no strategy applies.
func (c *Correlator) Match(user types.Engineer) string {
	email := strings.ToLower(user.Email)
	if email == "" {
		return ""
	}

	if login, ok := c.Overrides[email]; ok {
		return login
	}
	if login, ok := c.EmailIndex[email]; ok {
		return login
	}
	return c.matchByName(user)
}

// MatchAll resolves a whole user list, returning email -> login for every
// engineer (empty string for unmatched, so callers can report match rates).
func (c *Correlator) MatchAll(users []types.Engineer) map[string]string {
	out := make(map[string]string, len(users))
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		out[strings.ToLower(u.Email)] = c.Match(u)
	}
	return out
}

// matchByName tries the common login construction patterns for the
// engineer's name plus the local part of the email.
func (c *Correlator) matchByName(user types.Engineer) string {
	name := strings.ToLower(strings.TrimSpace(user.Name))
	emailPrefix, _, _ := strings.Cut(strings.ToLower(user.Email), "@")

	var candidates []string
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		first, last := parts[0], parts[len(parts)-1]
		candidates = append(candidates,
			first+last,
			first+"."+last,
			first+"-"+last,
			first[:1]+last,
			first+last[:1],
		)
	}
	if emailPrefix != "" {
		candidates = append(candidates, emailPrefix)
	}
	if len(candidates) == 0 {
		return ""
	}

	lowerToActual := make(map[string]string, len(c.KnownLogins))
	for _, login := range c.KnownLogins {
		lowerToActual[strings.ToLower(login)] = login
	}
	for _, cand := range candidates {
		if actual, ok := lowerToActual[cand]; ok {
			return actual
		}
	}
	return ""
}

// Report summarizes correlation coverage for logging and operator review.
type Report struct {
	Total     int      `json:"total"`
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched"`
}

// Summarize builds a Report from a MatchAll result.
func Summarize(matches map[string]string) Report {
	r := Report{Total: len(matches)}
	for email, login := range matches {
		if login != "" {
			r.Matched++
		} else {
			r.Unmatched = append(r.Unmatched, email)
		}
	}
	sort.Strings(r.Unmatched)
	return r
}
