package adapters

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/sentiment"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

// historyClient is the subset of the Slack client the adapter needs.
// Tests substitute a fake.
type historyClient interface {
	GetConversationsForUserContext(ctx context.Context, params *slack.GetConversationsForUserParameters) ([]slack.Channel, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// SlackAdapter fetches a user's message activity and normalizes it into a
// communication record. Sentiment is computed once per message at collection
// time so downstream scoring stays deterministic.
type SlackAdapter struct {
	client historyClient
	logger *monitoring.Logger
}

// NewSlackAdapter creates an adapter using a bot token.
func NewSlackAdapter(token string, logger *monitoring.Logger) *SlackAdapter {
	return &SlackAdapter{client: slack.New(token), logger: logger}
}

// NewSlackAdapterWithClient wires a custom client, used in tests.
func NewSlackAdapterWithClient(client historyClient, logger *monitoring.Logger) *SlackAdapter {
	return &SlackAdapter{client: client, logger: logger}
}

// FetchCommunication collects messages authored by slackID across the
// conversations the user belongs to, within [since, until].
func (s *SlackAdapter) FetchCommunication(ctx context.Context, slackID string, since, until time.Time) (*types.CommunicationRecord, error) {
	rec := &types.CommunicationRecord{SlackID: slackID}

	start := time.Now()
	channels, err := s.userChannels(ctx, slackID)
	if err != nil {
		s.logger.CollectorLogger("slack", "users.conversations", 0, time.Since(start), false)
		return nil, err
	}

	for _, ch := range channels {
		msgs, reactions, err := s.channelMessages(ctx, ch, slackID, since, until)
		if err != nil {
			s.logger.CollectorLogger("slack", "conversations.history", 0, time.Since(start), false)
			return nil, fmt.Errorf("history for channel %s: %w", ch.ID, err)
		}
		rec.Messages = append(rec.Messages, msgs...)
		rec.ReactionsGiven += reactions
	}

	s.logger.CollectorLogger("slack", "conversations.history", 200, time.Since(start), true)
	return rec, nil
}

func (s *SlackAdapter) userChannels(ctx context.Context, slackID string) ([]slack.Channel, error) {
	var channels []slack.Channel
	cursor := ""
	for {
		page, next, err := s.client.GetConversationsForUserContext(ctx, &slack.GetConversationsForUserParameters{
			UserID: slackID,
			Types:  []string{"public_channel", "private_channel", "im"},
			Limit:  200,
			Cursor: cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("list conversations for %s: %w", slackID, err)
		}
		channels = append(channels, page...)
		if next == "" {
			return channels, nil
		}
		cursor = next
	}
}

func (s *SlackAdapter) channelMessages(ctx context.Context, ch slack.Channel, slackID string, since, until time.Time) ([]types.Message, int, error) {
	var out []types.Message
	reactions := 0

	cursor := ""
	for {
		resp, err := s.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: ch.ID,
			Oldest:    slackTimestamp(since),
			Latest:    slackTimestamp(until),
			Limit:     200,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, 0, err
		}

		for _, msg := range resp.Messages {
			for _, r := range msg.Reactions {
				for _, u := range r.Users {
					if u == slackID {
						reactions++
					}
				}
			}
			if msg.User != slackID {
				continue
			}
			ts, err := parseSlackTimestamp(msg.Timestamp)
			if err != nil {
				continue
			}
			out = append(out, types.Message{
				Timestamp: ts,
				ChannelID: ch.ID,
				DM:        ch.IsIM,
				InThread:  msg.ThreadTimestamp != "" && msg.ThreadTimestamp != msg.Timestamp,
				Text:      msg.Text,
				Sentiment: sentiment.Compound(msg.Text),
			})
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			return out, reactions, nil
		}
		cursor = resp.ResponseMetaData.NextCursor
	}
}

func slackTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + ".000000"
}

func parseSlackTimestamp(ts string) (time.Time, error) {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}, err
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), nil
}
