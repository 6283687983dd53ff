package types

import "time"

// Engineer identifies one on-call engineer for an analysis run.
// Built once from the upstream user list and never mutated during scoring.
type Engineer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	GitHubLogin string `json:"github_login,omitempty"`
	SlackID     string `json:"slack_id,omitempty"`
}

// IncidentRecord is a read-only incident snapshot for the analysis window.
type IncidentRecord struct {
	ID             string     `json:"id"`
	Severity       string     `json:"severity"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	AssigneeIDs    []string   `json:"assignee_ids,omitempty"`
	Escalated      bool       `json:"escalated"`
}

// Resolved reports whether the incident reached a resolved state.
func (i *IncidentRecord) Resolved() bool {
	return i.ResolvedAt != nil && !i.ResolvedAt.IsZero()
}

// Commit is a single commit attributed to the engineer's code identity.
type Commit struct {
	Timestamp  time.Time `json:"timestamp"`
	Repository string    `json:"repository"`
	AfterHours bool      `json:"after_hours"`
	Weekend    bool      `json:"weekend"`
}

// PullRequest is a pull request opened by the engineer.
type PullRequest struct {
	CreatedAt  time.Time `json:"created_at"`
	AfterHours bool      `json:"after_hours"`
	Weekend    bool      `json:"weekend"`
}

// CodeActivityRecord is the per-engineer code platform snapshot. A nil
// record means the identity correlation found no match and the source is
// absent for that engineer.
type CodeActivityRecord struct {
	Login        string        `json:"login"`
	Commits      []Commit      `json:"commits"`
	PullRequests []PullRequest `json:"pull_requests"`
}

// Message is a single chat message with its precomputed sentiment. The
// compound sentiment score is produced once at collection time so the
// scoring engine stays pure.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	ChannelID string    `json:"channel_id"`
	DM        bool      `json:"dm"`
	InThread  bool      `json:"in_thread"`
	Text      string    `json:"text"`
	Sentiment float64   `json:"sentiment"`
}

// CommunicationRecord is the per-engineer chat snapshot. Nil means the
// chat identity was not linked and the source is absent.
type CommunicationRecord struct {
	SlackID        string    `json:"slack_id"`
	Messages       []Message `json:"messages"`
	ReactionsGiven int       `json:"reactions_given"`
}

// EngineerInput is the full input contract for one engineer's analysis.
type EngineerInput struct {
	User          Engineer             `json:"user"`
	Incidents     []IncidentRecord     `json:"incidents"`
	CodeActivity  *CodeActivityRecord  `json:"code_activity,omitempty"`
	Communication *CommunicationRecord `json:"communication,omitempty"`
}
