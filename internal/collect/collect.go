// Package collect assembles per-engineer analysis inputs from the
// configured upstream sources. The incident source is mandatory; code and
// chat activity are attached only for engineers the correlator can match
// to a code-platform login or who carry a chat workspace id. A source
// fetch failure for one engineer leaves that source absent rather than
// failing the run.
package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oncallpulse/burnout-meter/internal/adapters"
	"github.com/oncallpulse/burnout-meter/internal/correlate"
	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// IncidentSource provides the engineer roster and their incident load.
type IncidentSource interface {
	FetchUsers(ctx context.Context) ([]types.Engineer, error)
	FetchIncidents(ctx context.Context, since time.Time) ([]types.IncidentRecord, error)
}

// CodeSource provides org membership, a commit-author email index and
// per-login commit/PR activity.
type CodeSource interface {
	FetchOrgLogins(ctx context.Context) ([]string, error)
	FetchCommitAuthors(ctx context.Context, since, until time.Time) (map[string]string, error)
	FetchActivity(ctx context.Context, login string, since, until time.Time) (*types.CodeActivityRecord, error)
}

// ChatSource provides per-user message activity.
type ChatSource interface {
	FetchCommunication(ctx context.Context, chatID string, since, until time.Time) (*types.CommunicationRecord, error)
}

// Collector orchestrates a full gathering pass across the sources.
type Collector struct {
	incidents IncidentSource
	code      CodeSource
	chat      ChatSource
	logger    *monitoring.Logger
}

// New builds a Collector. code and chat may be nil when those sources are
// not configured.
func New(incidents IncidentSource, code CodeSource, chat ChatSource, logger *monitoring.Logger) *Collector {
	return &Collector{incidents: incidents, code: code, chat: chat, logger: logger}
}

// Result carries the gathered inputs plus correlation coverage for the run.
type Result struct {
	Inputs      []types.EngineerInput `json:"inputs"`
	Correlation correlate.Report      `json:"correlation"`
}

// Gather fetches the roster, maps incidents, resolves code-platform logins
// and attaches optional sources for the analysis window ending at now.
// overrides maps engineer email to code-platform login and always wins
// over discovery.
func (c *Collector) Gather(ctx context.Context, overrides map[string]string, windowDays int, now time.Time) (Result, error) {
	since := now.AddDate(0, 0, -windowDays)

	users, err := c.incidents.FetchUsers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch roster: %w", err)
	}
	incidents, err := c.incidents.FetchIncidents(ctx, since)
	if err != nil {
		return Result{}, fmt.Errorf("fetch incidents: %w", err)
	}
	byUser := adapters.MapIncidents(users, incidents)

	var matches map[string]string
	if c.code != nil {
		logins, err := c.code.FetchOrgLogins(ctx)
		if err != nil {
			c.logger.Warn("Org membership fetch failed, skipping code activity", "error", err)
		} else {
			emailIndex, err := c.code.FetchCommitAuthors(ctx, since, now)
			if err != nil {
				c.logger.Warn("Commit author index fetch failed, matching by heuristics only", "error", err)
			}
			corr := &correlate.Correlator{
				Overrides:   lowerKeys(overrides),
				EmailIndex:  emailIndex,
				KnownLogins: logins,
			}
			matches = corr.MatchAll(users)
		}
	}

	inputs := make([]types.EngineerInput, 0, len(users))
	for _, u := range users {
		in := types.EngineerInput{User: u, Incidents: byUser[u.ID]}

		if login := matches[strings.ToLower(u.Email)]; login != "" {
			activity, err := c.code.FetchActivity(ctx, login, since, now)
			if err != nil {
				c.logger.Warn("Code activity fetch failed", "user_id", u.ID, "login", login, "error", err)
			} else {
				in.CodeActivity = activity
			}
		}

		if c.chat != nil && u.SlackID != "" {
			comm, err := c.chat.FetchCommunication(ctx, u.SlackID, since, now)
			if err != nil {
				c.logger.Warn("Chat activity fetch failed", "user_id", u.ID, "chat_id", u.SlackID, "error", err)
			} else {
				in.Communication = comm
			}
		}

		inputs = append(inputs, in)
	}

	return Result{Inputs: inputs, Correlation: correlate.Summarize(matches)}, nil
}

func lowerKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
