package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlackClient struct {
	channels map[string][]slack.Message
	isIM     map[string]bool
}

func (f *fakeSlackClient) GetConversationsForUserContext(ctx context.Context, params *slack.GetConversationsForUserParameters) ([]slack.Channel, string, error) {
	var out []slack.Channel
	for id := range f.channels {
		ch := slack.Channel{}
		ch.ID = id
		ch.IsIM = f.isIM[id]
		out = append(out, ch)
	}
	return out, "", nil
}

func (f *fakeSlackClient) GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	return &slack.GetConversationHistoryResponse{
		Messages: f.channels[params.ChannelID],
	}, nil
}

func slackMsg(user, ts, thread, text string, reactors ...string) slack.Message {
	m := slack.Message{}
	m.User = user
	m.Timestamp = ts
	m.ThreadTimestamp = thread
	m.Text = text
	if len(reactors) > 0 {
		m.Reactions = []slack.ItemReaction{{Name: "thumbsup", Count: len(reactors), Users: reactors}}
	}
	return m
}

func TestFetchCommunication(t *testing.T) {
	fake := &fakeSlackClient{
		channels: map[string][]slack.Message{
			"C1": {
				slackMsg("UME", "1736244000.000100", "", "shipped the fix, great work everyone"),
				slackMsg("UME", "1736244100.000200", "1736244000.000100", "following up in thread"),
				slackMsg("UOTHER", "1736244200.000300", "", "thanks!", "UME", "UOTHER"),
			},
			"D1": {
				slackMsg("UME", "1736250000.000400", "", "totally swamped today"),
			},
		},
		isIM: map[string]bool{"D1": true},
	}

	a := NewSlackAdapterWithClient(fake, quietLogger())
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	rec, err := a.FetchCommunication(context.Background(), "UME", since, until)
	require.NoError(t, err)

	// Only the engineer's own messages are collected.
	require.Len(t, rec.Messages, 3)

	var dms, threaded int
	for _, m := range rec.Messages {
		if m.DM {
			dms++
		}
		if m.InThread {
			threaded++
		}
		assert.False(t, m.Timestamp.IsZero())
	}
	assert.Equal(t, 1, dms)
	assert.Equal(t, 1, threaded)

	// Reactions the engineer gave on anyone's messages are counted.
	assert.Equal(t, 1, rec.ReactionsGiven)
}

func TestFetchCommunicationSentimentPrecomputed(t *testing.T) {
	fake := &fakeSlackClient{
		channels: map[string][]slack.Message{
			"C1": {
				slackMsg("UME", "1736244000.000100", "", "this is great, love it"),
				slackMsg("UME", "1736244100.000200", "", "this is awful, everything is broken"),
			},
		},
	}

	a := NewSlackAdapterWithClient(fake, quietLogger())
	rec, err := a.FetchCommunication(context.Background(), "UME", time.Time{}, time.Now())
	require.NoError(t, err)
	require.Len(t, rec.Messages, 2)

	assert.Greater(t, rec.Messages[0].Sentiment, 0.0)
	assert.Less(t, rec.Messages[1].Sentiment, 0.0)
}

func TestParseSlackTimestamp(t *testing.T) {
	ts, err := parseSlackTimestamp("1736244000.000100")
	require.NoError(t, err)
	assert.Equal(t, int64(1736244000), ts.Unix())

	_, err = parseSlackTimestamp("not-a-timestamp")
	assert.Error(t, err)
}
